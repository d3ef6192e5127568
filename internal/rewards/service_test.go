package rewards

import (
	"context"
	"encoding/json"
	"testing"

	"gorm.io/gorm"

	"github.com/sduquej/mercadito-backend/internal/settings"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
)

type stubSettingsStore struct {
	values  map[string]json.RawMessage
	upserts map[string]json.RawMessage
	writes  int
}

func newStubSettingsStore() *stubSettingsStore {
	return &stubSettingsStore{
		values:  map[string]json.RawMessage{},
		upserts: map[string]json.RawMessage{},
	}
}

func (s *stubSettingsStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	value, ok := s.values[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return value, nil
}

func (s *stubSettingsStore) UpsertMany(_ context.Context, values map[string]json.RawMessage) error {
	s.writes++
	for key, value := range values {
		s.upserts[key] = value
	}
	return nil
}

func seedValidSettings(t *testing.T, store *stubSettingsStore) {
	t.Helper()
	raw := validRawConfig()
	store.values[settings.KeyDiceDiscountEnabled] = mustJSON(t, raw.Enabled)
	store.values[settings.KeyDiceMaxDiscountPercent] = mustJSON(t, raw.MaxDiscountPercentage)
	store.values[settings.KeyDiceAllowedPages] = mustJSON(t, raw.AllowedPages)
	store.values[settings.KeyDiceRewardMap] = mustJSON(t, raw.RewardMap)
}

func mustJSON(t *testing.T, value any) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return payload
}

func TestLoadReturnsValidatedConfig(t *testing.T) {
	store := newStubSettingsStore()
	seedValidSettings(t, store)

	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	cfg, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Enabled {
		t.Fatal("expected config to be enabled")
	}
	if got := len(cfg.RewardMap); got != MaxDiceTotal-MinDiceTotal+1 {
		t.Fatalf("expected %d mapped totals, got %d", MaxDiceTotal-MinDiceTotal+1, got)
	}
}

func TestLoadFailsClosedOnMissingSetting(t *testing.T) {
	store := newStubSettingsStore()
	seedValidSettings(t, store)
	delete(store.values, settings.KeyDiceRewardMap)

	svc, _ := NewService(store)
	_, err := svc.Load(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadToleratesMissingAllowedPages(t *testing.T) {
	store := newStubSettingsStore()
	seedValidSettings(t, store)
	delete(store.values, settings.KeyDiceAllowedPages)

	svc, _ := NewService(store)
	cfg, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.AllowedPages) != 0 {
		t.Fatalf("expected no allowed pages, got %v", cfg.AllowedPages)
	}
}

func TestUpdatePersistsEverySection(t *testing.T) {
	store := newStubSettingsStore()
	svc, _ := NewService(store)

	cfg, err := svc.Update(context.Background(), validRawConfig())
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	for _, key := range []string{
		settings.KeyDiceDiscountEnabled,
		settings.KeyDiceMaxDiscountPercent,
		settings.KeyDiceAllowedPages,
		settings.KeyDiceRewardMap,
	} {
		if _, ok := store.upserts[key]; !ok {
			t.Fatalf("expected upsert for %s", key)
		}
	}
	if store.writes != 1 {
		t.Fatalf("expected one batched write, got %d", store.writes)
	}
}

func TestUpdateRejectsInvalidConfigWithoutWriting(t *testing.T) {
	store := newStubSettingsStore()
	svc, _ := NewService(store)

	raw := validRawConfig()
	delete(raw.RewardMap, "12")
	if _, err := svc.Update(context.Background(), raw); err == nil {
		t.Fatal("expected validation to fail")
	}
	if len(store.upserts) != 0 {
		t.Fatalf("expected no writes, got %d", len(store.upserts))
	}
}
