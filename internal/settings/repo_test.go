package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestRepositoryGetMissingKey(t *testing.T) {
	repo := NewRepository(setupSettingsTestDB(t))

	_, err := repo.Get(context.Background(), KeyDiceRewardMap)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryUpsertManyInsertsAndReplaces(t *testing.T) {
	repo := NewRepository(setupSettingsTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertMany(ctx, map[string]json.RawMessage{
		KeyDiceDiscountEnabled:    json.RawMessage(`true`),
		KeyDiceMaxDiscountPercent: json.RawMessage(`"30"`),
	}))

	enabled, err := repo.Get(ctx, KeyDiceDiscountEnabled)
	require.NoError(t, err)
	require.JSONEq(t, `true`, string(enabled))

	require.NoError(t, repo.UpsertMany(ctx, map[string]json.RawMessage{
		KeyDiceDiscountEnabled: json.RawMessage(`false`),
	}))

	enabled, err = repo.Get(ctx, KeyDiceDiscountEnabled)
	require.NoError(t, err)
	require.JSONEq(t, `false`, string(enabled))

	maxDiscount, err := repo.Get(ctx, KeyDiceMaxDiscountPercent)
	require.NoError(t, err)
	require.JSONEq(t, `"30"`, string(maxDiscount))
}

func TestRepositoryUpsertManyRollsBackTogether(t *testing.T) {
	repo := NewRepository(setupSettingsTestDB(t))
	ctx := context.Background()

	err := repo.UpsertMany(ctx, map[string]json.RawMessage{
		KeyDiceDiscountEnabled: json.RawMessage(`true`),
		KeyDiceRewardMap:       nil,
	})
	require.Error(t, err)

	_, err = repo.Get(ctx, KeyDiceDiscountEnabled)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound), "no key should survive a failed batch")
}