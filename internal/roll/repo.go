package roll

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sduquej/mercadito-backend/pkg/db"
	"github.com/sduquej/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
)

const activeAttemptConstraint = "roll_attempts_one_active_per_user"

// ErrRaceLost signals that a concurrent request persisted its attempt first.
// Callers resolve it by returning the winning attempt, never as a failure.
var ErrRaceLost = errors.New("another roll attempt won the write")

// Repository persists roll attempts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a roll attempt repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActive returns the newest attempt that still blocks a fresh roll:
// un-applied, not superseded, created after windowStart. Returns nil when the
// user has no blocking attempt.
func (r *Repository) FindActive(ctx context.Context, userID uuid.UUID, windowStart time.Time) (*models.RollAttempt, error) {
	var attempt models.RollAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND applied_to_order_id IS NULL AND superseded_at IS NULL AND created_at > ?", userID, windowStart).
		Order("created_at DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active roll attempt")
	}
	return &attempt, nil
}

// SupersedeStale closes out attempts whose cooldown window has elapsed
// without being applied, freeing the partial unique slot for a fresh insert.
func (r *Repository) SupersedeStale(ctx context.Context, userID uuid.UUID, windowStart time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.RollAttempt{}).
		Where("user_id = ? AND applied_to_order_id IS NULL AND superseded_at IS NULL AND created_at <= ?", userID, windowStart).
		Update("superseded_at", time.Now().UTC()).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supersede stale roll attempts")
	}
	return nil
}

// Create inserts a fresh attempt. A unique violation on the one-active-per-user
// index means a concurrent request won the race and is reported as ErrRaceLost.
func (r *Repository) Create(ctx context.Context, attempt *models.RollAttempt) error {
	err := r.db.WithContext(ctx).Create(attempt).Error
	if err != nil {
		if db.IsUniqueViolation(err, activeAttemptConstraint) {
			return ErrRaceLost
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create roll attempt")
	}
	return nil
}

// DeleteFinishedBefore removes applied or superseded attempts created before
// the cutoff. Active attempts are never touched.
func (r *Repository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND (applied_to_order_id IS NOT NULL OR superseded_at IS NOT NULL)", cutoff).
		Delete(&models.RollAttempt{})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete finished roll attempts")
	}
	return result.RowsAffected, nil
}
