package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"flumers-backend/internal/chat"
	"flumers-backend/internal/middleware"
	"flumers-backend/internal/models"
	"flumers-backend/internal/supabase"
)

type ChatHandler struct {
	chatService    *chat.Service
	realtimeClient *supabase.RealtimeClient
}

func NewChatHandler(chatService *chat.Service, realtimeClient *supabase.RealtimeClient) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		realtimeClient: realtimeClient,
	}
}

// SendMessage godoc
// @Summary     Send a direct message
// @Tags        chat
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       peer_uid path string true "Peer user ID"
// @Param       request body models.SendMessageRequest true "Message text"
// @Success     200 {object} models.Message
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /chats/{peer_uid}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor := middleware.Actor(c)
	peer := c.Param("peer_uid")

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), actor, peer, req.Text)
	if err != nil {
		writeChatError(c, err)
		return
	}

	_ = h.realtimeClient.PublishChatEvent(msg.ChatKey, "message_sent",
		supabase.MessageSentPayload(msg.ChatKey, msg.ID))

	c.JSON(http.StatusOK, msg)
}

// ListMessages godoc
// @Summary     Read a conversation
// @Description Returns the conversation with a peer, oldest first. Viewing it marks each inbound unread message read, one at a time, the way an open chat view does.
// @Tags        chat
// @Produce     json
// @Security    Bearer
// @Param       peer_uid path string true "Peer user ID"
// @Success     200 {object} models.MessageListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /chats/{peer_uid}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	actor := middleware.Actor(c)
	peer := c.Param("peer_uid")

	if err := h.chatService.MarkObserved(c.Request.Context(), actor, peer); err != nil {
		writeChatError(c, err)
		return
	}

	msgs, err := h.chatService.List(c.Request.Context(), actor, peer)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageListResponse{
		ChatKey:  chat.Key(actor, peer),
		Messages: msgs,
	})
}

// UnreadCount godoc
// @Summary     Unread badge count for one peer
// @Description Freshly recomputed on every call; nothing is cached.
// @Tags        chat
// @Produce     json
// @Security    Bearer
// @Param       peer_uid path string true "Peer user ID"
// @Success     200 {object} models.UnreadResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /chats/{peer_uid}/unread [get]
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	actor := middleware.Actor(c)
	peer := c.Param("peer_uid")

	n, err := h.chatService.Unread(c.Request.Context(), actor, peer)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UnreadResponse{PeerUID: peer, Unread: n})
}

// StreamMessages godoc
// @Summary     Live message stream
// @Description Server-sent events stream of new messages in the conversation. The subscription is torn down when the client disconnects. Inbound messages are marked read as they are delivered, since the stream is an active chat view.
// @Tags        chat
// @Produce     text/event-stream
// @Security    Bearer
// @Param       peer_uid path string true "Peer user ID"
// @Router      /chats/{peer_uid}/stream [get]
func (h *ChatHandler) StreamMessages(c *gin.Context) {
	actor := middleware.Actor(c)
	peer := c.Param("peer_uid")
	if actor == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	msgs, cancel := h.chatService.Stream(c.Request.Context(), actor, peer)
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case msg, ok := <-msgs:
			if !ok {
				return false
			}
			if msg.ReceiverUID == actor && !msg.Read {
				_ = h.chatService.MarkRead(c.Request.Context(), actor, msg.ID)
			}
			c.SSEvent("message", msg)
			return true
		}
	})
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "message not found"})
	case errors.Is(err, chat.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not allowed"})
	case errors.Is(err, chat.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()})
	}
}
