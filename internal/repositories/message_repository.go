package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"broadcast-service/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNoActiveMessage = errors.New("no active message")
	ErrMissingOwner    = errors.New("message has no owner")
	ErrOwnerNotFound   = errors.New("owner not found")
)

// MessageRepository owns broadcast message persistence. Save is the sole
// write path for creating or updating a message and is the only code that
// may set the active flag.
type MessageRepository interface {
	Save(ctx context.Context, msg *models.BroadcastMessage) error
	ActiveMessageFor(ctx context.Context, ownerID int) (models.BroadcastMessage, error)
	Delete(ctx context.Context, messageID int, ownerID int) error
	GetMessage(ctx context.Context, messageID int, ownerID int) (models.BroadcastMessage, error)
	ListForUser(ctx context.Context, ownerID int) ([]models.BroadcastMessage, error)
}

// MessageRepo is a sqlx-backed implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Save persists msg. When msg.Active is true the whole
// lock -> deactivate-others -> persist sequence runs in one transaction,
// so concurrent activations for the same owner serialize and exactly one
// message per owner is active after any commit. An inactive save writes
// the single row and touches nothing else.
//
// On a create (msg.ID == 0) the generated id and timestamps are written
// back into msg.
func (r *MessageRepo) Save(ctx context.Context, msg *models.BroadcastMessage) error {
	if msg.UserID == 0 {
		return ErrMissingOwner
	}
	if !msg.Active {
		return r.saveInactive(ctx, msg)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Lock the owner row, not the message rows: a first-time activation
	// has no message rows to lock, and two of them would otherwise both
	// commit active. The lock is per owner, so activations for different
	// users never contend.
	var ownerID int
	if err = tx.GetContext(ctx, &ownerID, `SELECT id FROM users WHERE id=$1 FOR UPDATE`, msg.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrOwnerNotFound
		}
		return err
	}

	// Owner-only filter, deliberately not restricted to currently-active
	// rows: the update stays idempotent and clears any stray active rows
	// along the way.
	if _, err = tx.ExecContext(ctx, `UPDATE broadcast_messages SET active = FALSE, updated_at = NOW() WHERE user_id=$1`, msg.UserID); err != nil {
		return err
	}

	if msg.ID == 0 {
		err = tx.QueryRowxContext(ctx, `INSERT INTO broadcast_messages (user_id, content, active) VALUES ($1, $2, TRUE) RETURNING id, created_at, updated_at`, msg.UserID, msg.Content).
			Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
	} else {
		err = tx.QueryRowxContext(ctx, `UPDATE broadcast_messages SET content=$3, active = TRUE, updated_at = NOW() WHERE id=$1 AND user_id=$2 RETURNING created_at, updated_at`, msg.ID, msg.UserID, msg.Content).
			Scan(&msg.CreatedAt, &msg.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrMessageNotFound
		}
	}
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

func (r *MessageRepo) saveInactive(ctx context.Context, msg *models.BroadcastMessage) error {
	if msg.ID == 0 {
		return r.db.QueryRowxContext(ctx, `INSERT INTO broadcast_messages (user_id, content, active) VALUES ($1, $2, FALSE) RETURNING id, created_at, updated_at`, msg.UserID, msg.Content).
			Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
	}
	err := r.db.QueryRowxContext(ctx, `UPDATE broadcast_messages SET content=$3, active = FALSE, updated_at = NOW() WHERE id=$1 AND user_id=$2 RETURNING created_at, updated_at`, msg.ID, msg.UserID, msg.Content).
		Scan(&msg.CreatedAt, &msg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMessageNotFound
	}
	return err
}

// ActiveMessageFor returns the owner's single active message, or
// ErrNoActiveMessage when there is none. Reads committed state only.
func (r *MessageRepo) ActiveMessageFor(ctx context.Context, ownerID int) (models.BroadcastMessage, error) {
	var msg models.BroadcastMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, user_id, content, active, created_at, updated_at FROM broadcast_messages WHERE user_id=$1 AND active`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BroadcastMessage{}, ErrNoActiveMessage
	}
	return msg, err
}

// Delete removes a message by id. Deleting a missing message is a no-op
// success, and deleting the active message never promotes another one.
func (r *MessageRepo) Delete(ctx context.Context, messageID int, ownerID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM broadcast_messages WHERE id=$1 AND user_id=$2`, messageID, ownerID)
	return err
}

// GetMessage fetches a single message owned by ownerID.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int, ownerID int) (models.BroadcastMessage, error) {
	var msg models.BroadcastMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, user_id, content, active, created_at, updated_at FROM broadcast_messages WHERE id=$1 AND user_id=$2`, messageID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BroadcastMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// ListForUser returns the owner's messages, newest first.
func (r *MessageRepo) ListForUser(ctx context.Context, ownerID int) ([]models.BroadcastMessage, error) {
	var msgs []models.BroadcastMessage
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, user_id, content, active, created_at, updated_at FROM broadcast_messages WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, ownerID)
	return msgs, err
}
