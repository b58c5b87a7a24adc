package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"flumers-backend/internal/middleware"
	"flumers-backend/internal/models"
	"flumers-backend/internal/support"
)

type SupportHandler struct {
	supportService *support.Service
}

func NewSupportHandler(supportService *support.Service) *SupportHandler {
	return &SupportHandler{supportService: supportService}
}

// Ask godoc
// @Summary     Ask the support chatbot
// @Description Relays one message to the external bot backend and returns its reply. The call is not retried on failure.
// @Tags        support
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SupportRequest true "Message"
// @Success     200 {object} models.SupportMessage
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /support/messages [post]
func (h *SupportHandler) Ask(c *gin.Context) {
	actor := middleware.Actor(c)

	var req models.SupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	msg, err := h.supportService.Ask(c.Request.Context(), actor, req.Text)
	if err != nil {
		writeSupportError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// History godoc
// @Summary     Support chat history
// @Tags        support
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.SupportMessage
// @Router      /support/messages [get]
func (h *SupportHandler) History(c *gin.Context) {
	msgs, err := h.supportService.History(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		writeSupportError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func writeSupportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, support.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not allowed"})
	case errors.Is(err, support.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Message: err.Error()})
	case errors.Is(err, support.ErrBotBackend):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "support bot unavailable", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()})
	}
}
