// Package push delivers notifications to users' devices. It defines the
// push gateway contract, a Firebase Cloud Messaging adapter, a log-only
// gateway for environments without credentials, and the Fanout that turns
// one notification into an in-app record plus batched multicast pushes.
package push

import (
	"context"

	"github.com/rs/zerolog/log"
)

// MaxBatchSize is the largest token list a single multicast may carry.
const MaxBatchSize = 500

// Machine-readable per-token failure reasons.
const (
	ReasonNotRegistered   = "registration-token-not-registered"
	ReasonInvalidToken    = "invalid-registration-token"
	ReasonInvalidArgument = "invalid-argument"
	ReasonQuotaExceeded   = "quota-exceeded"
	ReasonUnavailable     = "unavailable"
	ReasonInternal        = "internal-error"
	ReasonSenderMismatch  = "mismatched-credential"
	ReasonUnknown         = "unknown-error"
)

// Retirable reports whether a failure reason means the endpoint is dead and
// must be removed from the registry. Every other reason is treated as
// transient.
func Retirable(reason string) bool {
	return reason == ReasonNotRegistered || reason == ReasonInvalidToken
}

// Message is the normalized multicast payload. Data values are strings
// because gateways only accept string-only data maps.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Result is the delivery outcome of one token.
type Result struct {
	Token     string
	Success   bool
	MessageID string
	Reason    string // set when !Success
}

// Gateway sends one multicast push. Results are returned in token order.
// A non-nil error means the whole batch failed.
type Gateway interface {
	SendMulticast(ctx context.Context, msg Message, tokens []string) ([]Result, error)
}

// LogGateway is a Gateway that only logs. It is selected when no push
// credentials are configured and reports every token as delivered.
type LogGateway struct{}

// SendMulticast logs msg and returns a success result per token.
func (LogGateway) SendMulticast(_ context.Context, msg Message, tokens []string) ([]Result, error) {
	log.Info().
		Str("title", msg.Title).
		Int("tokens", len(tokens)).
		Msg("push (log-only gateway)")
	out := make([]Result, len(tokens))
	for i, t := range tokens {
		out[i] = Result{Token: t, Success: true}
	}
	return out, nil
}
