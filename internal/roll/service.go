package roll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sduquej/mercadito-backend/internal/rewards"
	"github.com/sduquej/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/logger"
	"github.com/sduquej/mercadito-backend/pkg/metrics"
	"github.com/sduquej/mercadito-backend/pkg/types"
)

const (
	// OutcomeFresh and OutcomeRepeat label the roll_resolved_total metric.
	OutcomeFresh  = "fresh"
	OutcomeRepeat = "repeat"
)

type attemptStore interface {
	FindActive(ctx context.Context, userID uuid.UUID, windowStart time.Time) (*models.RollAttempt, error)
	SupersedeStale(ctx context.Context, userID uuid.UUID, windowStart time.Time) error
	Create(ctx context.Context, attempt *models.RollAttempt) error
}

type configLoader interface {
	Load(ctx context.Context) (*rewards.Config, error)
}

type userLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(scope string) string
}

// Result is the answer to a roll request. Repeat marks the idempotent path:
// the user already held an active attempt and got it back unchanged.
type Result struct {
	DiceTotal int          `json:"dice_total"`
	Reward    types.Reward `json:"reward"`
	Repeat    bool         `json:"repeat"`
	Message   string       `json:"message,omitempty"`
}

// Service issues at most one active reward roll per user per cooldown window.
type Service interface {
	RequestRoll(ctx context.Context, userID uuid.UUID) (*Result, error)
}

// Options carries the collaborators for NewService. Locker and Metrics are
// optional; the database constraint alone is enough for correctness.
type Options struct {
	Attempts attemptStore
	Config   configLoader
	Roller   *Roller
	Locker   userLocker
	Metrics  *metrics.RollMetrics
	Logger   *logger.Logger
	Cooldown time.Duration
	LockTTL  time.Duration
	Now      func() time.Time
}

type service struct {
	attempts attemptStore
	config   configLoader
	roller   *Roller
	locker   userLocker
	metrics  *metrics.RollMetrics
	logg     *logger.Logger
	cooldown time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

// NewService builds a roll service.
func NewService(opts Options) (Service, error) {
	if opts.Attempts == nil {
		return nil, fmt.Errorf("attempt store required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("config loader required")
	}
	if opts.Roller == nil {
		return nil, fmt.Errorf("roller required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.Cooldown <= 0 {
		return nil, fmt.Errorf("cooldown must be positive")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}
	return &service{
		attempts: opts.Attempts,
		config:   opts.Config,
		roller:   opts.Roller,
		locker:   opts.Locker,
		metrics:  opts.Metrics,
		logg:     opts.Logger,
		cooldown: opts.Cooldown,
		lockTTL:  lockTTL,
		now:      now,
	}, nil
}

// RequestRoll resolves one roll for the user. An active attempt inside the
// cooldown window is returned as-is; otherwise a fresh two-die draw is mapped
// through the reward table and persisted. Two requests racing past the
// cooldown check are settled by the one-active-per-user constraint: the loser
// reads back the winner's attempt and both callers see the same reward.
func (s *service) RequestRoll(ctx context.Context, userID uuid.UUID) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	cfg, err := s.config.Load(ctx)
	if err != nil {
		s.metrics.IncConfigError()
		return nil, err
	}
	if !cfg.Enabled {
		return nil, pkgerrors.New(pkgerrors.CodeFeatureDisabled, "the dice discount game is currently disabled")
	}

	if release := s.tryLock(ctx, userID); release != nil {
		defer release()
	}

	windowStart := s.now().UTC().Add(-s.cooldown)

	existing, err := s.attempts.FindActive(ctx, userID, windowStart)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.IncResolved(OutcomeRepeat)
		return repeatResult(existing), nil
	}

	if err := s.attempts.SupersedeStale(ctx, userID, windowStart); err != nil {
		return nil, err
	}

	die1, die2, total := s.roller.Roll()
	reward, err := cfg.RewardFor(total)
	if err != nil {
		s.metrics.IncConfigError()
		s.logg.Error(s.logg.WithField(ctx, "dice_total", total), "dice total has no mapped reward", err)
		return nil, err
	}

	attempt := &models.RollAttempt{
		UserID:    userID,
		DiceTotal: total,
		Reward:    reward,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		if errors.Is(err, ErrRaceLost) {
			return s.resolveRaceLost(ctx, userID, windowStart)
		}
		return nil, err
	}

	s.metrics.IncResolved(OutcomeFresh)
	logCtx := s.logg.WithUserID(ctx, userID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"die1":       die1,
		"die2":       die2,
		"dice_total": total,
	})
	s.logg.Info(logCtx, "issued fresh reward roll")
	return &Result{DiceTotal: total, Reward: reward}, nil
}

// tryLock takes a short per-user Redis lock to keep same-user double clicks
// from reaching the insert at all. Best effort only: when Redis is down or
// the lock is held, the request proceeds and the unique index settles it.
func (s *service) tryLock(ctx context.Context, userID uuid.UUID) func() {
	if s.locker == nil {
		return nil
	}
	key := s.locker.LockKey("roll:" + userID.String())
	acquired, err := s.locker.SetNX(ctx, key, 1, s.lockTTL)
	if err != nil {
		s.logg.Warn(ctx, "roll lock unavailable, relying on database constraint")
		return nil
	}
	if !acquired {
		return nil
	}
	return func() {
		if err := s.locker.Del(context.WithoutCancel(ctx), key); err != nil {
			s.logg.Warn(ctx, "failed to release roll lock")
		}
	}
}

func (s *service) resolveRaceLost(ctx context.Context, userID uuid.UUID, windowStart time.Time) (*Result, error) {
	s.metrics.IncRaceLost()
	winner, err := s.attempts.FindActive(ctx, userID, windowStart)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "lost the roll race but found no winning attempt")
	}
	s.metrics.IncResolved(OutcomeRepeat)
	return repeatResult(winner), nil
}

func repeatResult(attempt *models.RollAttempt) *Result {
	return &Result{
		DiceTotal: attempt.DiceTotal,
		Reward:    attempt.Reward,
		Repeat:    true,
		Message:   "Ya tienes un premio pendiente",
	}
}
