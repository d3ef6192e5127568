package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sduquej/mercadito-backend/internal/rewards"
	"github.com/sduquej/mercadito-backend/pkg/enums"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/logger"
	"github.com/sduquej/mercadito-backend/pkg/types"
)

type stubRewardsService struct {
	updated *rewards.RawConfig
}

func (s *stubRewardsService) Load(_ context.Context) (*rewards.Config, error) {
	return rewards.Parse(fullRawConfig())
}

func (s *stubRewardsService) Update(_ context.Context, raw rewards.RawConfig) (*rewards.Config, error) {
	cfg, err := rewards.Parse(raw)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, typed.Message())
		}
		return nil, err
	}
	s.updated = &raw
	return cfg, nil
}

func fullRawConfig() rewards.RawConfig {
	rewardMap := make(map[string]types.Reward)
	for total := rewards.MinDiceTotal; total <= rewards.MaxDiceTotal; total++ {
		value := decimal.NewFromInt(int64(total))
		rewardMap[strconv.Itoa(total)] = types.Reward{
			Kind:  enums.RewardKindPercentageDiscount,
			Value: &value,
			Label: strconv.Itoa(total) + "% de descuento",
		}
	}
	return rewards.RawConfig{
		Enabled:               true,
		MaxDiscountPercentage: decimal.NewFromInt(30),
		RewardMap:             rewardMap,
	}
}

func TestAdminGetRewardConfigReturnsWireShape(t *testing.T) {
	svc := &stubRewardsService{}
	handler := AdminGetRewardConfig(svc, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/rewards-config", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	for _, key := range []string{"enabled", "max_discount_percentage", "reward_map"} {
		if _, ok := envelope.Data[key]; !ok {
			t.Fatalf("expected key %q in response, got %s", key, rec.Body.String())
		}
	}

	var rewardMap map[string]types.Reward
	if err := json.Unmarshal(envelope.Data["reward_map"], &rewardMap); err != nil {
		t.Fatalf("decode reward map: %v", err)
	}
	for total := rewards.MinDiceTotal; total <= rewards.MaxDiceTotal; total++ {
		if _, ok := rewardMap[strconv.Itoa(total)]; !ok {
			t.Fatalf("expected reward map entry for total %d", total)
		}
	}
}

func TestAdminRewardConfigRoundTrip(t *testing.T) {
	svc := &stubRewardsService{}
	get := AdminGetRewardConfig(svc, logger.New(logger.Options{ServiceName: "test"}))
	put := AdminPutRewardConfig(svc, logger.New(logger.Options{ServiceName: "test"}))

	getReq := httptest.NewRequest(http.MethodGet, "/api/admin/v1/rewards-config", nil)
	getRec := httptest.NewRecorder()
	get(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from read, got %d: %s", getRec.Code, getRec.Body.String())
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(getRec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	putReq := httptest.NewRequest(http.MethodPut, "/api/admin/v1/rewards-config", strings.NewReader(string(envelope.Data)))
	putRec := httptest.NewRecorder()
	put(putRec, putReq)

	if putRec.Code != http.StatusOK {
		t.Fatalf("expected the read body to be writable unchanged, got %d: %s", putRec.Code, putRec.Body.String())
	}
	if svc.updated == nil {
		t.Fatal("expected service to receive the update")
	}
}

func TestAdminPutRewardConfigAcceptsValidPayload(t *testing.T) {
	svc := &stubRewardsService{}
	handler := AdminPutRewardConfig(svc, logger.New(logger.Options{ServiceName: "test"}))

	body, err := json.Marshal(fullRawConfig())
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/rewards-config", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updated == nil {
		t.Fatal("expected service to receive the update")
	}
}

func TestAdminPutRewardConfigRejectsIncompleteMap(t *testing.T) {
	svc := &stubRewardsService{}
	handler := AdminPutRewardConfig(svc, logger.New(logger.Options{ServiceName: "test"}))

	raw := fullRawConfig()
	delete(raw.RewardMap, "7")
	body, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/rewards-config", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updated != nil {
		t.Fatal("expected no update on validation failure")
	}
}

func TestAdminPutRewardConfigRejectsMalformedBody(t *testing.T) {
	svc := &stubRewardsService{}
	handler := AdminPutRewardConfig(svc, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/rewards-config", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
