package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sduquej/mercadito-backend/pkg/types"
)

// RollAttempt is one issued reward roll. An attempt is "active" while it has
// not been applied to an order and not been superseded by a later roll; the
// roll_attempts_one_active_per_user partial unique index holds at most one
// active attempt per user, which is what closes the double-roll race.
type RollAttempt struct {
	ID               uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID    `gorm:"column:user_id;type:uuid;not null"`
	DiceTotal        int          `gorm:"column:dice_total;not null"`
	Reward           types.Reward `gorm:"column:reward;type:jsonb;serializer:json"`
	AppliedToOrderID *uuid.UUID   `gorm:"column:applied_to_order_id;type:uuid"`
	SupersededAt     *time.Time   `gorm:"column:superseded_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;autoCreateTime"`
}

// Active reports whether the attempt still blocks a fresh roll at the given
// window start.
func (a RollAttempt) Active(windowStart time.Time) bool {
	return a.AppliedToOrderID == nil && a.SupersededAt == nil && a.CreatedAt.After(windowStart)
}
