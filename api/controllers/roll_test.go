package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/sduquej/mercadito-backend/api/middleware"
	"github.com/sduquej/mercadito-backend/internal/roll"
	"github.com/sduquej/mercadito-backend/pkg/enums"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/logger"
	"github.com/sduquej/mercadito-backend/pkg/types"
)

type stubRollService struct {
	result *roll.Result
	err    error
	userID uuid.UUID
}

func (s *stubRollService) RequestRoll(_ context.Context, userID uuid.UUID) (*roll.Result, error) {
	s.userID = userID
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func authenticatedRequest(method, target string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	return req.WithContext(ctx)
}

func TestRollRequestReturnsReward(t *testing.T) {
	userID := uuid.New()
	svc := &stubRollService{result: &roll.Result{
		DiceTotal: 7,
		Reward:    types.Reward{Kind: enums.RewardKindFreeShipping, Label: "Envío gratis"},
	}}
	handler := RollRequest(svc, logger.New(logger.Options{ServiceName: "test"}))

	rec := httptest.NewRecorder()
	handler(rec, authenticatedRequest(http.MethodPost, "/api/v1/roll", userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.userID != userID {
		t.Fatalf("expected service to receive %s, got %s", userID, svc.userID)
	}
	var envelope struct {
		Data roll.Result `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DiceTotal != 7 {
		t.Fatalf("expected dice total 7, got %d", envelope.Data.DiceTotal)
	}
}

func TestRollRequestFeatureDisabled(t *testing.T) {
	svc := &stubRollService{err: pkgerrors.New(pkgerrors.CodeFeatureDisabled, "the dice discount game is currently disabled")}
	handler := RollRequest(svc, logger.New(logger.Options{ServiceName: "test"}))

	rec := httptest.NewRecorder()
	handler(rec, authenticatedRequest(http.MethodPost, "/api/v1/roll", uuid.New()))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeFeatureDisabled) {
		t.Fatalf("expected %s, got %s", pkgerrors.CodeFeatureDisabled, envelope.Error.Code)
	}
}

func TestRollRequestRequiresUserContext(t *testing.T) {
	svc := &stubRollService{}
	handler := RollRequest(svc, logger.New(logger.Options{ServiceName: "test"}))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/roll", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
