package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"broadcast-service/internal/models"
	"broadcast-service/internal/observability"
	"broadcast-service/internal/repositories"
	"broadcast-service/internal/telemetry"
	"broadcast-service/internal/ws"
)

// MessageHandler is the authenticated gateway to the broadcast message
// store. The owner is always the authenticated caller; the store's Save
// path enforces the single-active-message invariant.
type MessageHandler struct {
	messages repositories.MessageRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, hub: hub, audit: audit}
}

// ListMessages returns the caller's messages, newest first.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID := c.GetInt("userID")

	msgs, err := h.messages.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// AddMessage creates a message for the caller. New messages are active
// unless the request says otherwise.
func (h *MessageHandler) AddMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
		Active  *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	userID := c.GetInt("userID")
	msg := models.BroadcastMessage{UserID: userID, Content: req.Content, Active: active}
	if err := h.messages.Save(c.Request.Context(), &msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
		return
	}

	h.afterActiveChange(c, msg)
	h.emitAudit(c, fmt.Sprintf("message created id=%d active=%t", msg.ID, msg.Active))
	c.JSON(http.StatusCreated, msg)
}

// UpdateMessage edits the text of a message, keeping its active flag.
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.messages.GetMessage(c.Request.Context(), messageID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}

	msg.Content = req.Content
	if err := h.messages.Save(c.Request.Context(), &msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
		return
	}

	h.afterActiveChange(c, msg)
	c.JSON(http.StatusOK, msg)
}

// ToggleMessage flips the active flag of a message through the store's
// Save path.
func (h *MessageHandler) ToggleMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.messages.GetMessage(c.Request.Context(), messageID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}

	wasActive := msg.Active
	msg.Active = !msg.Active
	if err := h.messages.Save(c.Request.Context(), &msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
		return
	}

	if msg.Active {
		h.afterActiveChange(c, msg)
	} else if wasActive {
		h.hub.BroadcastCleared(userID)
	}
	h.emitAudit(c, fmt.Sprintf("message toggled id=%d active=%t", msg.ID, msg.Active))
	c.JSON(http.StatusOK, msg)
}

// DeleteMessage removes a message. Deleting a missing message is still a
// 204; deleting the active one leaves the caller with no active message.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	wasActive := false
	if msg, err := h.messages.GetMessage(c.Request.Context(), messageID, userID); err == nil {
		wasActive = msg.Active
	}

	if err := h.messages.Delete(c.Request.Context(), messageID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	if wasActive {
		h.hub.BroadcastCleared(userID)
	}
	h.emitAudit(c, fmt.Sprintf("message deleted id=%d", messageID))
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) afterActiveChange(c *gin.Context, msg models.BroadcastMessage) {
	if !msg.Active {
		return
	}
	observability.IncActivation()
	h.hub.BroadcastActiveMessage(msg.UserID, msg)
}

func (h *MessageHandler) emitAudit(c *gin.Context, text string) {
	h.audit.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), userIDFromContext(c))
}

func parseMessageID(c *gin.Context) (int, bool) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return 0, false
	}
	return messageID, true
}
