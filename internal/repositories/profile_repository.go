package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"broadcast-service/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository abstracts public profile persistence. The slug is
// assigned on the first upsert and never changes afterwards.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile, username string) error
	GetByUserID(ctx context.Context, userID int) (models.Profile, error)
	GetBySlug(ctx context.Context, slug string) (models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Upsert creates or updates the user's profile. On insert a fresh slug
// derived from the username is stored; on conflict the existing slug is
// kept and only the detail fields change.
func (r *ProfileRepo) Upsert(ctx context.Context, profile *models.Profile, username string) error {
	slug := newSlug(username)
	err := r.db.QueryRowxContext(ctx, `INSERT INTO profiles (user_id, phone_number, bio, designation, organization, slug)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE SET
            phone_number = EXCLUDED.phone_number,
            bio = EXCLUDED.bio,
            designation = EXCLUDED.designation,
            organization = EXCLUDED.organization
        RETURNING slug, created_at`,
		profile.UserID, profile.PhoneNumber, profile.Bio, profile.Designation, profile.Organization, slug).
		Scan(&profile.Slug, &profile.CreatedAt)
	return err
}

// GetByUserID fetches the profile for a user.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT user_id, phone_number, bio, designation, organization, slug, created_at FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// GetBySlug resolves a public slug to its owner's profile.
func (r *ProfileRepo) GetBySlug(ctx context.Context, slug string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT user_id, phone_number, bio, designation, organization, slug, created_at FROM profiles WHERE slug=$1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// newSlug builds "<username>-<8 hex chars>". The username part keeps the
// slug recognizable; the random suffix keeps it unguessable and unique.
func newSlug(username string) string {
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(username), " ", "-"))
	return base + "-" + uuid.NewString()[:8]
}
