// Change-event ingestion handlers.
//
// The document store's change feed posts one JSON envelope per event:
//   - POST /internal/events/orders/created
//   - POST /internal/events/orders/updated
//   - POST /internal/events/messages/created
//   - POST /internal/events/providers/written
//
// Events are acknowledged with 204 once processed. Trigger failures are
// logged and still acknowledged so the feed does not redeliver; only an
// undecodable envelope or a missing document id is rejected with 400.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/services"
)

// OrderCreated godoc
// @ID          ingestOrderCreated
// @Summary     Order created event
// @Tags        Events
// @Accept      json
// @Security    EventsToken
// @Param       body  body  events.OrderCreated  true  "Event envelope"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Router      /internal/events/orders/created [post]
func (h *Handlers) OrderCreated(c *gin.Context) {
	var ev events.OrderCreated
	if !bindEvent(c, &ev) {
		return
	}
	h.ack(c, "order.created", h.ingest.OrderCreated(c.Request.Context(), ev))
}

// OrderUpdated godoc
// @ID          ingestOrderUpdated
// @Summary     Order updated event
// @Tags        Events
// @Accept      json
// @Security    EventsToken
// @Param       body  body  events.OrderUpdated  true  "Event envelope"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Router      /internal/events/orders/updated [post]
func (h *Handlers) OrderUpdated(c *gin.Context) {
	var ev events.OrderUpdated
	if !bindEvent(c, &ev) {
		return
	}
	h.ack(c, "order.updated", h.ingest.OrderUpdated(c.Request.Context(), ev))
}

// MessageCreated godoc
// @ID          ingestMessageCreated
// @Summary     Chat message created event
// @Tags        Events
// @Accept      json
// @Security    EventsToken
// @Param       body  body  events.MessageCreated  true  "Event envelope"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Router      /internal/events/messages/created [post]
func (h *Handlers) MessageCreated(c *gin.Context) {
	var ev events.MessageCreated
	if !bindEvent(c, &ev) {
		return
	}
	h.ack(c, "message.created", h.ingest.MessageCreated(c.Request.Context(), ev))
}

// ProviderWritten godoc
// @ID          ingestProviderWritten
// @Summary     Provider written event
// @Tags        Events
// @Accept      json
// @Security    EventsToken
// @Param       body  body  events.ProviderWritten  true  "Event envelope"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Router      /internal/events/providers/written [post]
func (h *Handlers) ProviderWritten(c *gin.Context) {
	var ev events.ProviderWritten
	if !bindEvent(c, &ev) {
		return
	}
	h.ack(c, "provider.written", h.ingest.ProviderWritten(c.Request.Context(), ev))
}

func bindEvent(c *gin.Context, ev any) bool {
	if err := c.ShouldBindJSON(ev); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid event envelope")
		return false
	}
	return true
}

// ack answers 204 for processed events. Missing document ids are a 400;
// any other failure is logged and acknowledged.
func (h *Handlers) ack(c *gin.Context, kind string, err error) {
	if err != nil {
		if errors.Is(err, services.ErrInvalidOrderID) ||
			errors.Is(err, services.ErrInvalidMessageID) ||
			errors.Is(err, services.ErrInvalidProviderID) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error())
			return
		}
		loggerFrom(c).Error().Err(err).Str("event", kind).Msg("event handler failed")
	}
	noContent(c)
}
