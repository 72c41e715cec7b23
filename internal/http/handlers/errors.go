// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and give clients a stable taxonomy on top of
// the HTTP status. serviceError maps service sentinels onto status and code so
// every RPC answers the same failure the same way.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "failed_precondition",
//	  "message": "order has no assigned provider"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/chegaja-engine/internal/services"
)

const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnauthenticated    = "unauthenticated"
	ErrCodePermissionDenied   = "permission_denied"
	ErrCodeNotFound           = "not_found"
	ErrCodeInvalidArgument    = "invalid_argument"
	ErrCodeFailedPrecondition = "failed_precondition"
	ErrCodeRateLimited        = "too_many_requests"
	ErrCodeInternal           = "internal_error"
	ErrCodeMethodNotAllowed   = "method_not_allowed"

	// Webhook-specific:
	ErrCodeBadSignature = "bad_signature"
)

type errMapping struct {
	err    error
	status int
	code   string
}

// serviceErrors is checked in order with errors.Is.
var serviceErrors = []errMapping{
	{services.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthenticated},
	{services.ErrPermissionDenied, http.StatusForbidden, ErrCodePermissionDenied},
	{services.ErrOrderNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrProviderNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrInvalidOrderID, http.StatusBadRequest, ErrCodeInvalidArgument},
	{services.ErrInvalidProviderID, http.StatusBadRequest, ErrCodeInvalidArgument},
	{services.ErrInvalidMessageID, http.StatusBadRequest, ErrCodeInvalidArgument},
	{services.ErrInvalidToken, http.StatusBadRequest, ErrCodeInvalidArgument},
	{services.ErrProviderNotAssigned, http.StatusPreconditionFailed, ErrCodeFailedPrecondition},
	{services.ErrInvalidAmount, http.StatusPreconditionFailed, ErrCodeFailedPrecondition},
	{services.ErrNoConnectedAccount, http.StatusPreconditionFailed, ErrCodeFailedPrecondition},
}

// serviceError writes the envelope for err. Unknown errors become a 500
// whose message does not leak internals.
func serviceError(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			fail(c, m.status, m.code, m.err.Error())
			return
		}
	}
	loggerFrom(c).Error().Err(err).Msg("request failed")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
}
