package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"broadcast-service/internal/models"
	"broadcast-service/internal/repositories"
)

// PublicHandler is the unauthenticated reader side: it resolves a slug
// to the owner's display details and current active message.
type PublicHandler struct {
	profiles repositories.ProfileRepository
	users    repositories.UserRepository
	messages repositories.MessageRepository
}

// NewPublicHandler builds a PublicHandler.
func NewPublicHandler(profiles repositories.ProfileRepository, users repositories.UserRepository, messages repositories.MessageRepository) *PublicHandler {
	return &PublicHandler{profiles: profiles, users: users, messages: messages}
}

// GetStatus renders the public status payload for a slug. An owner with
// no active message is a 200 with a null message, not an error.
func (h *PublicHandler) GetStatus(c *gin.Context) {
	profile, err := h.profiles.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "unknown slug"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), profile.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	var active *models.BroadcastMessage
	msg, err := h.messages.ActiveMessageFor(c.Request.Context(), profile.UserID)
	switch {
	case err == nil:
		active = &msg
	case errors.Is(err, repositories.ErrNoActiveMessage):
		// no active message is a normal state
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":       user.Username,
		"display_name":   user.ReadableName(),
		"bio":            profile.Bio,
		"designation":    profile.Designation,
		"organization":   profile.Organization,
		"active_message": active,
	})
}
