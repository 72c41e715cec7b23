// Push and inbox HTTP handlers.
//
//   - POST /push/endpoints   (register a device token)
//   - GET  /notifications    (in-app inbox, newest first)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/utils"
)

// RegisterEndpointRequest is the JSON payload for registering a push token.
type RegisterEndpointRequest struct {
	// Token is the push registration token of the device.
	Token string `json:"token" binding:"required" example:"fcm-token-abc"`
	// Platform is android, ios or web; other values are stored empty.
	Platform string `json:"platform" example:"android"`
}

// ListNotificationsResponse wraps the caller's notifications.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

// RegisterEndpoint godoc
// @ID          registerPushEndpoint
// @Summary     Register a push endpoint
// @Description Adds the token to the caller's endpoint set, refreshing it when already present.
// @Tags        Push
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.RegisterEndpointRequest  true  "Push token"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/v1/push/endpoints [post]
func (h *Handlers) RegisterEndpoint(c *gin.Context) {
	var req RegisterEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token required")
		return
	}
	if err := h.endpoints.Register(c.Request.Context(), userID(c), req.Token, req.Platform); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List in-app notifications
// @Description Returns the caller's newest notifications.
// @Tags        Push
// @Produce     json
// @Security    BearerAuth
//
// @Param       limit  query  int  false  "Maximum items"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListNotificationsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/v1/notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	items, err := h.notifications.List(c.Request.Context(), userID(c), limit)
	if err != nil {
		serviceError(c, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	ok(c, http.StatusOK, ListNotificationsResponse{Notifications: items})
}
