package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"broadcast-service/internal/repositories"
	"broadcast-service/internal/telemetry"
)

const qrImageSize = 512

// QRCodeHandler generates and serves the one-time QR code pointing at
// the caller's public status page.
type QRCodeHandler struct {
	qrcodes  repositories.QRCodeRepository
	profiles repositories.ProfileRepository
	baseURL  string
	audit    *telemetry.AuditEmitter
}

// NewQRCodeHandler builds a QRCodeHandler.
func NewQRCodeHandler(qrcodes repositories.QRCodeRepository, profiles repositories.ProfileRepository, baseURL string, audit *telemetry.AuditEmitter) *QRCodeHandler {
	return &QRCodeHandler{qrcodes: qrcodes, profiles: profiles, baseURL: baseURL, audit: audit}
}

// Generate encodes the public URL for the caller's slug into a PNG and
// stores it. One code per user, ever.
func (h *QRCodeHandler) Generate(c *gin.Context) {
	userID := c.GetInt("userID")

	profile, err := h.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": "complete your profile first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	url := fmt.Sprintf("%s/u/%s", h.baseURL, profile.Slug)
	// High error correction keeps the code scannable when printed small
	// or partially covered.
	png, err := qrcode.Encode(url, qrcode.High, qrImageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate qr code"})
		return
	}

	if err := h.qrcodes.Create(c.Request.Context(), userID, png); err != nil {
		if errors.Is(err, repositories.ErrQRCodeExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "you already have your one-time qr code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store qr code"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", fmt.Sprintf("qr code generated slug=%s", profile.Slug), requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusCreated, gin.H{"slug": profile.Slug, "url": url})
}

// Download streams the stored PNG as an attachment.
func (h *QRCodeHandler) Download(c *gin.Context) {
	userID := c.GetInt("userID")

	code, err := h.qrcodes.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrQRCodeNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "qr code not found"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="qr_code.png"`)
	c.Data(http.StatusOK, "application/octet-stream", code.Image)
}
