package push

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMGateway sends multicast pushes through Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
}

// NewFCMGateway builds a messaging client from a service-account file.
// An empty credentialsFile falls back to application default credentials.
func NewFCMGateway(ctx context.Context, credentialsFile, projectID string) (*FCMGateway, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return &FCMGateway{client: client}, nil
}

// SendMulticast implements Gateway.
func (g *FCMGateway) SendMulticast(ctx context.Context, msg Message, tokens []string) ([]Result, error) {
	br, err := g.client.SendEachForMulticast(ctx, buildMulticast(msg, tokens))
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(tokens))
	for i, t := range tokens {
		out[i] = Result{Token: t}
		if i >= len(br.Responses) {
			out[i].Reason = ReasonUnknown
			continue
		}
		r := br.Responses[i]
		out[i].Success = r.Success
		out[i].MessageID = r.MessageID
		if !r.Success {
			out[i].Reason = classify(r.Error)
		}
	}
	return out, nil
}

// buildMulticast sets high-priority and sound-enabled hints for both
// Android and APNs.
func buildMulticast(msg Message, tokens []string) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority:     "high",
			Notification: &messaging.AndroidNotification{Sound: "default"},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}

func classify(err error) string {
	switch {
	case err == nil:
		return ReasonUnknown
	case messaging.IsUnregistered(err):
		return ReasonNotRegistered
	case messaging.IsInvalidArgument(err):
		return invalidArgumentReason(err)
	case messaging.IsQuotaExceeded(err):
		return ReasonQuotaExceeded
	case messaging.IsUnavailable(err):
		return ReasonUnavailable
	case messaging.IsInternal(err):
		return ReasonInternal
	case messaging.IsSenderIDMismatch(err):
		return ReasonSenderMismatch
	default:
		return ReasonUnknown
	}
}

// invalidArgumentReason separates a malformed registration token from other
// INVALID_ARGUMENT failures such as an oversize payload or a reserved data
// key. Only the former is a dead endpoint.
func invalidArgumentReason(err error) string {
	if strings.Contains(strings.ToLower(err.Error()), "registration token") {
		return ReasonInvalidToken
	}
	return ReasonInvalidArgument
}
