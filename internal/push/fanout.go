package push

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
)

// EndpointRepo is the endpoint-registry contract required by Fanout.
type EndpointRepo interface {
	ListEndpoints(ctx context.Context, db *gorm.DB, userID string) ([]string, error)
	RetireEndpoints(ctx context.Context, db *gorm.DB, userID string, tokens []string) (int64, error)
}

// NotificationRepo persists in-app notifications.
type NotificationRepo interface {
	CreateNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error
}

// Notification is what a component asks Fanout to deliver to one user.
//
// Title and Body go to the in-app record. PushTitle and PushBody, when set,
// replace them in the push payload.
type Notification struct {
	Type       string
	Title      string
	Body       string
	PushTitle  string
	PushBody   string
	OrderID    string
	MessageID  string
	FromUserID string
	Status     string
	Data       map[string]any
}

// Fanout records in-app notifications and pushes them to every endpoint of
// the recipient.
type Fanout struct {
	DB        *gorm.DB
	Endpoints EndpointRepo
	Inbox     NotificationRepo
	Gateway   Gateway

	// ProductName is the push title used when none is given.
	ProductName string
	// BatchSize caps tokens per multicast; values outside 1..MaxBatchSize
	// mean MaxBatchSize.
	BatchSize int
}

// Dispatch delivers n to userID.
//
// The in-app record is best effort and push failures are logged and
// counted, never returned. The only error is a failure to read the user's
// endpoints. Batches are sent concurrently and a failed batch does not
// affect the others. Tokens reported as not registered or invalid are
// retired afterwards.
func (f *Fanout) Dispatch(ctx context.Context, userID string, n Notification) error {
	tr := otel.Tracer("push/Fanout")
	ctx, span := tr.Start(ctx, "Dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("notification.type", n.Type))

	lg := log.With().Str("user_id", userID).Str("type", n.Type).Str("order_id", n.OrderID).Logger()

	if f.Inbox != nil {
		rec := &domain.Notification{
			UserID:     userID,
			Type:       n.Type,
			Title:      n.Title,
			Body:       n.Body,
			OrderID:    n.OrderID,
			MessageID:  n.MessageID,
			FromUserID: n.FromUserID,
			Status:     n.Status,
			Data:       n.Data,
		}
		if err := f.Inbox.CreateNotification(ctx, f.DB, rec); err != nil {
			lg.Warn().Err(err).Msg("in-app notification write failed")
		}
	}

	tokens, err := f.Endpoints.ListEndpoints(ctx, f.DB, userID)
	if err != nil {
		return fmt.Errorf("list endpoints: %w", err)
	}
	if len(tokens) == 0 {
		lg.Debug().Msg("no push endpoints")
		return nil
	}
	span.SetAttributes(attribute.Int("push.tokens", len(tokens)))

	msg := f.payload(n)

	var (
		mu     sync.Mutex
		retire []string
		g      errgroup.Group
	)
	for i, batch := range Batches(tokens, f.batchSize()) {
		g.Go(func() error {
			results, err := f.Gateway.SendMulticast(ctx, msg, batch)
			if err != nil {
				pushMessages.WithLabelValues("batch_error").Add(float64(len(batch)))
				lg.Error().Err(err).Int("batch", i).Int("tokens", len(batch)).Msg("push batch failed")
				return nil
			}
			var dead []string
			for _, r := range results {
				if r.Success {
					pushMessages.WithLabelValues("success").Inc()
					continue
				}
				pushMessages.WithLabelValues("failure").Inc()
				if Retirable(r.Reason) {
					dead = append(dead, r.Token)
				} else {
					lg.Warn().Int("batch", i).Str("reason", r.Reason).Msg("push delivery failed")
				}
			}
			if len(dead) > 0 {
				mu.Lock()
				retire = append(retire, dead...)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(retire) > 0 {
		retired, err := f.Endpoints.RetireEndpoints(ctx, f.DB, userID, retire)
		if err != nil {
			lg.Error().Err(err).Int("tokens", len(retire)).Msg("retire endpoints failed")
			return nil
		}
		pushRetired.Add(float64(retired))
		lg.Info().Int64("retired", retired).Msg("retired dead push endpoints")
	}
	return nil
}

func (f *Fanout) batchSize() int {
	if f.BatchSize < 1 || f.BatchSize > MaxBatchSize {
		return MaxBatchSize
	}
	return f.BatchSize
}

// payload builds the normalized push message for n.
func (f *Fanout) payload(n Notification) Message {
	title := n.PushTitle
	if title == "" {
		title = n.Title
	}
	if title == "" {
		title = f.ProductName
	}
	body := n.PushBody
	if body == "" {
		body = n.Body
	}
	data := StringifyData(n.Data)
	if n.Type != "" {
		if _, ok := data["type"]; !ok {
			data["type"] = n.Type
		}
	}
	return Message{Title: title, Body: body, Data: data}
}

// Batches splits tokens into consecutive slices of at most size elements.
func Batches(tokens []string, size int) [][]string {
	if size < 1 {
		size = MaxBatchSize
	}
	out := make([][]string, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, tokens[start:end])
	}
	return out
}

// StringifyData coerces every value to a string. Nil becomes "", scalars
// use their canonical text form and anything else is JSON-encoded.
func StringifyData(in map[string]any) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case bool:
			out[k] = strconv.FormatBool(t)
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			out[k] = fmt.Sprint(t)
		case float32:
			out[k] = strconv.FormatFloat(float64(t), 'f', -1, 32)
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case fmt.Stringer:
			out[k] = t.String()
		default:
			b, err := json.Marshal(t)
			if err != nil {
				out[k] = fmt.Sprint(t)
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}
