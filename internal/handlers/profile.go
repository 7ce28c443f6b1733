package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"broadcast-service/internal/models"
	"broadcast-service/internal/repositories"
)

// ProfileHandler manages the caller's public profile.
type ProfileHandler struct {
	profiles repositories.ProfileRepository
	users    repositories.UserRepository
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profiles repositories.ProfileRepository, users repositories.UserRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, users: users}
}

// GetProfile returns the caller's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("userID")

	profile, err := h.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no profile yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile creates or updates the caller's profile. The slug is
// assigned on the first write and kept thereafter.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		PhoneNumber  string `json:"phone_number"`
		Bio          string `json:"bio"`
		Designation  string `json:"designation"`
		Organization string `json:"organization"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	profile := models.Profile{
		UserID:       userID,
		PhoneNumber:  req.PhoneNumber,
		Bio:          req.Bio,
		Designation:  req.Designation,
		Organization: req.Organization,
	}
	if err := h.profiles.Upsert(c.Request.Context(), &profile, user.Username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
