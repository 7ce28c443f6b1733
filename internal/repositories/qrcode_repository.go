package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"broadcast-service/internal/models"
)

var (
	ErrQRCodeNotFound = errors.New("qr code not found")
	ErrQRCodeExists   = errors.New("qr code already generated")
)

// QRCodeRepository stores the one-time QR image per user.
type QRCodeRepository interface {
	Create(ctx context.Context, userID int, image []byte) error
	GetByUserID(ctx context.Context, userID int) (models.QRCode, error)
}

// QRCodeRepo is a sqlx implementation of QRCodeRepository.
type QRCodeRepo struct {
	db *sqlx.DB
}

// NewQRCodeRepo constructs a QRCodeRepo.
func NewQRCodeRepo(db *sqlx.DB) *QRCodeRepo {
	return &QRCodeRepo{db: db}
}

// Create stores the generated image. A second generation for the same
// user fails with ErrQRCodeExists.
func (r *QRCodeRepo) Create(ctx context.Context, userID int, image []byte) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO qr_codes (user_id, image) VALUES ($1, $2)`, userID, image)
	if isUniqueViolation(err) {
		return ErrQRCodeExists
	}
	return err
}

// GetByUserID fetches the stored image.
func (r *QRCodeRepo) GetByUserID(ctx context.Context, userID int) (models.QRCode, error) {
	var code models.QRCode
	err := r.db.GetContext(ctx, &code, `SELECT user_id, image, created_at FROM qr_codes WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.QRCode{}, ErrQRCodeNotFound
	}
	return code, err
}
