// Package services holds the marketplace engine's business logic: the geo
// matcher, the order state notifier, the chat aggregator, the payment
// reconciler, provider onboarding and endpoint-registry maintenance.
// This file centralizes common service-level error values so that they can
// be consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

// Caller errors.
var (
	// ErrUnauthenticated is returned when an RPC is invoked without a caller
	// identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPermissionDenied is returned when the caller is not the order's
	// client.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidOrderID is returned when the order id is blank.
	ErrInvalidOrderID = errors.New("order id is required")

	// ErrInvalidProviderID is returned when a provider event has no id.
	ErrInvalidProviderID = errors.New("provider id is required")

	// ErrInvalidMessageID is returned when a chat event has no message id.
	ErrInvalidMessageID = errors.New("message id is required")

	// ErrInvalidToken is returned when a push endpoint token is blank.
	ErrInvalidToken = errors.New("push token is required")
)

// Order and provider state errors.
var (
	// ErrOrderNotFound indicates that the order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrProviderNotFound indicates that the provider record does not exist.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderNotAssigned is returned when a payment is requested for an
	// order that has no provider yet.
	ErrProviderNotAssigned = errors.New("order has no assigned provider")

	// ErrInvalidAmount is returned when the chargeable amount is not strictly
	// positive.
	ErrInvalidAmount = errors.New("invalid amount for payment")

	// ErrNoConnectedAccount is returned when the provider has no connected
	// payment account.
	ErrNoConnectedAccount = errors.New("provider has no connected payment account")
)
