// Payment HTTP handlers.
//
//   - POST /payments/intent            (create or reuse a payment intent)
//   - POST /payments/onboarding-link   (provider hosted onboarding)
//   - POST /webhooks/stripe            (processor webhook, unauthenticated)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/chegaja-engine/internal/payments"
)

// stripeSignatureHeader carries the processor's webhook signature.
const stripeSignatureHeader = "Stripe-Signature"

// CreateIntentRequest is the JSON payload for requesting a payment intent.
type CreateIntentRequest struct {
	// PedidoID is the order to pay.
	PedidoID string `json:"pedidoId" example:"pedido_123"`
}

// WebhookAck acknowledges a processed webhook.
type WebhookAck struct {
	Received bool `json:"received" example:"true"`
}

// CreatePaymentIntent godoc
// @ID          createPaymentIntent
// @Summary     Create or reuse a payment intent for an order
// @Description Returns the client secret of the order's payment intent. An existing non-canceled intent is reused.
// @Tags        Payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateIntentRequest  true  "Order to pay"
//
// @Success     200  {object}  services.IntentResult
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid argument"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Caller is not the order's client"
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Failure     412  {object}  handlers.ErrorResponse  "Failed precondition"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/v1/payments/intent [post]
func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.PedidoID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "pedidoId is required")
		return
	}

	res, err := h.payments.CreateOrReuseIntent(c.Request.Context(), userID(c), req.PedidoID)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// CreateOnboardingLink godoc
// @ID          createOnboardingLink
// @Summary     Start provider payment onboarding
// @Description Creates the caller's connected account when missing and returns a hosted onboarding link.
// @Tags        Payments
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  services.OnboardingLink
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Provider not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/v1/payments/onboarding-link [post]
func (h *Handlers) CreateOnboardingLink(c *gin.Context) {
	link, err := h.onboarding.CreateLink(c.Request.Context(), userID(c))
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, link)
}

// StripeWebhook godoc
// @ID          stripeWebhook
// @Summary     Payment processor webhook
// @Description Verifies the signature over the raw body and reconciles orders, the payment ledger and provider onboarding.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       Stripe-Signature  header  string  true  "Webhook signature"
//
// @Success     200  {object}  handlers.WebhookAck
// @Failure     400  {object}  handlers.ErrorResponse  "Bad signature"
// @Failure     500  {object}  handlers.ErrorResponse  "Processing error"
// @Router      /webhooks/stripe [post]
func (h *Handlers) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}

	err = h.payments.ReconcileWebhook(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader))
	switch {
	case err == nil:
		ok(c, http.StatusOK, WebhookAck{Received: true})
	case errors.Is(err, payments.ErrInvalidSignature):
		loggerFrom(c).Warn().Err(err).Msg("webhook signature rejected")
		fail(c, http.StatusBadRequest, ErrCodeBadSignature, "invalid webhook signature")
	case errors.Is(err, payments.ErrNotConfigured):
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "webhook secret not configured")
	default:
		loggerFrom(c).Error().Err(err).Msg("webhook processing failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "webhook processing failed")
	}
}
