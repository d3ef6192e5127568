package roll

import (
	"context"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/internal/rewards"
	"github.com/sduquej/mercadito-backend/pkg/db/models"
	"github.com/sduquej/mercadito-backend/pkg/enums"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/logger"
	"github.com/sduquej/mercadito-backend/pkg/types"
)

// stubAttemptStore mimics the one-active-per-user partial unique index.
type stubAttemptStore struct {
	mu       sync.Mutex
	attempts []*models.RollAttempt
	creates  int
}

func (s *stubAttemptStore) FindActive(_ context.Context, userID uuid.UUID, windowStart time.Time) (*models.RollAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *models.RollAttempt
	for _, attempt := range s.attempts {
		if attempt.UserID != userID || !attempt.Active(windowStart) {
			continue
		}
		if newest == nil || attempt.CreatedAt.After(newest.CreatedAt) {
			newest = attempt
		}
	}
	if newest == nil {
		return nil, nil
	}
	copied := *newest
	return &copied, nil
}

func (s *stubAttemptStore) SupersedeStale(_ context.Context, userID uuid.UUID, windowStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, attempt := range s.attempts {
		if attempt.UserID == userID && attempt.AppliedToOrderID == nil && attempt.SupersededAt == nil && !attempt.CreatedAt.After(windowStart) {
			attempt.SupersededAt = &now
		}
	}
	return nil
}

func (s *stubAttemptStore) Create(_ context.Context, attempt *models.RollAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.attempts {
		if existing.UserID == attempt.UserID && existing.AppliedToOrderID == nil && existing.SupersededAt == nil {
			return ErrRaceLost
		}
	}
	attempt.ID = uuid.New()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	s.creates++
	s.attempts = append(s.attempts, attempt)
	return nil
}

type stubConfigLoader struct {
	cfg *rewards.Config
	err error
}

func (s *stubConfigLoader) Load(_ context.Context) (*rewards.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

func enabledConfig(t *testing.T) *rewards.Config {
	t.Helper()
	rewardMap := make(map[string]types.Reward)
	for total := rewards.MinDiceTotal; total <= rewards.MaxDiceTotal; total++ {
		value := decimal.NewFromInt(int64(total))
		rewardMap[strconv.Itoa(total)] = types.Reward{
			Kind:  enums.RewardKindPercentageDiscount,
			Value: &value,
			Label: strconv.Itoa(total) + "% de descuento",
		}
	}
	cfg, err := rewards.Parse(rewards.RawConfig{
		Enabled:               true,
		MaxDiscountPercentage: decimal.NewFromInt(30),
		RewardMap:             rewardMap,
	})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return cfg
}

func newTestService(t *testing.T, store *stubAttemptStore, loader *stubConfigLoader) Service {
	t.Helper()
	svc, err := NewService(Options{
		Attempts: store,
		Config:   loader,
		Roller:   NewRollerWithSeed(99),
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Cooldown: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestRequestRollIsIdempotentWithinWindow(t *testing.T) {
	store := &stubAttemptStore{}
	svc := newTestService(t, store, &stubConfigLoader{cfg: enabledConfig(t)})
	userID := uuid.New()

	first, err := svc.RequestRoll(context.Background(), userID)
	if err != nil {
		t.Fatalf("first roll returned error: %v", err)
	}
	if first.Repeat {
		t.Fatal("first roll must be fresh")
	}

	second, err := svc.RequestRoll(context.Background(), userID)
	if err != nil {
		t.Fatalf("second roll returned error: %v", err)
	}
	if !second.Repeat {
		t.Fatal("second roll must be the pending attempt")
	}
	if second.DiceTotal != first.DiceTotal || !second.Reward.Equal(first.Reward) {
		t.Fatalf("repeat must match: first %+v, second %+v", first, second)
	}
	if store.creates != 1 {
		t.Fatalf("expected exactly one persisted attempt, got %d", store.creates)
	}
}

func TestRequestRollGeneratesFreshAfterWindow(t *testing.T) {
	store := &stubAttemptStore{}
	svc := newTestService(t, store, &stubConfigLoader{cfg: enabledConfig(t)})
	userID := uuid.New()

	stale := &models.RollAttempt{
		ID:        uuid.New(),
		UserID:    userID,
		DiceTotal: 5,
		CreatedAt: time.Now().UTC().Add(-16 * time.Minute),
	}
	store.attempts = append(store.attempts, stale)

	result, err := svc.RequestRoll(context.Background(), userID)
	if err != nil {
		t.Fatalf("RequestRoll returned error: %v", err)
	}
	if result.Repeat {
		t.Fatal("expected a fresh roll once the window elapsed")
	}
	if stale.SupersededAt == nil {
		t.Fatal("expected the stale attempt to be superseded")
	}
	if store.creates != 1 {
		t.Fatalf("expected one fresh attempt, got %d", store.creates)
	}
}

func TestRequestRollAppliedAttemptDoesNotBlock(t *testing.T) {
	store := &stubAttemptStore{}
	svc := newTestService(t, store, &stubConfigLoader{cfg: enabledConfig(t)})
	userID := uuid.New()

	orderID := uuid.New()
	store.attempts = append(store.attempts, &models.RollAttempt{
		ID:               uuid.New(),
		UserID:           userID,
		DiceTotal:        9,
		AppliedToOrderID: &orderID,
		CreatedAt:        time.Now().UTC().Add(-1 * time.Minute),
	})

	result, err := svc.RequestRoll(context.Background(), userID)
	if err != nil {
		t.Fatalf("RequestRoll returned error: %v", err)
	}
	if result.Repeat {
		t.Fatal("an applied attempt must not block a fresh roll")
	}
}

func TestRequestRollFeatureDisabled(t *testing.T) {
	cfg := enabledConfig(t)
	cfg.Enabled = false
	svc := newTestService(t, &stubAttemptStore{}, &stubConfigLoader{cfg: cfg})

	_, err := svc.RequestRoll(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeFeatureDisabled {
		t.Fatalf("expected feature disabled, got %v", err)
	}
}

func TestRequestRollFailsClosedOnConfigError(t *testing.T) {
	loader := &stubConfigLoader{err: pkgerrors.New(pkgerrors.CodeConfiguration, "setting dice_reward_map is not configured")}
	svc := newTestService(t, &stubAttemptStore{}, loader)

	_, err := svc.RequestRoll(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRequestRollUnmappedTotal(t *testing.T) {
	cfg := enabledConfig(t)
	for total := rewards.MinDiceTotal; total <= rewards.MaxDiceTotal; total++ {
		delete(cfg.RewardMap, total)
	}
	svc := newTestService(t, &stubAttemptStore{}, &stubConfigLoader{cfg: cfg})

	_, err := svc.RequestRoll(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRequestRollRaceYieldsOneAttempt(t *testing.T) {
	store := &stubAttemptStore{}
	svc := newTestService(t, store, &stubConfigLoader{cfg: enabledConfig(t)})
	userID := uuid.New()

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.RequestRoll(context.Background(), userID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d returned error: %v", i, err)
		}
	}
	if store.creates != 1 {
		t.Fatalf("expected exactly one persisted attempt, got %d", store.creates)
	}
	if results[0].DiceTotal != results[1].DiceTotal || !results[0].Reward.Equal(results[1].Reward) {
		t.Fatalf("racing callers must observe the same reward: %+v vs %+v", results[0], results[1])
	}
}
