package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/karimnasser/propflow-backend/pkg/config"
)

func TestDisbursementWebhookRejectsBadKey(t *testing.T) {
	cfg := config.RailConfig{APIKey: "rail-secret"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/disbursement",
		strings.NewReader(`{"checkout_id":"`+uuid.NewString()+`","succeeded":true,"disbursement_reference":"TXN-1"}`))
	req.Header.Set("X-Rail-Api-Key", "wrong")
	resp := httptest.NewRecorder()

	DisbursementWebhook(nil, cfg, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestDisbursementWebhookRejectsEmptyConfiguredKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/disbursement", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()

	DisbursementWebhook(nil, config.RailConfig{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestDisbursementWebhookRejectsMalformedBody(t *testing.T) {
	cfg := config.RailConfig{APIKey: "rail-secret"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/disbursement", strings.NewReader(`{"checkout_id":`))
	req.Header.Set("X-Rail-Api-Key", "rail-secret")
	resp := httptest.NewRecorder()

	DisbursementWebhook(nil, cfg, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
