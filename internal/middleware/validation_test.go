package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"intervue/internal/models"
)

func TestValidateRequestPassesValidPayload(t *testing.T) {
	var captured *models.DetailsRequest
	handler := ValidateRequest[*models.DetailsRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetValidatedRequest[*models.DetailsRequest](r)
		w.WriteHeader(http.StatusOK)
	}))

	body, _ := json.Marshal(models.DetailsRequest{Name: "Jane Doe", Email: "jane@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/details", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured == nil || captured.Name != "Jane Doe" {
		t.Fatalf("validated request not stored in context: %+v", captured)
	}
}

func TestValidateRequestRejectsInvalidJSON(t *testing.T) {
	handler := ValidateRequest[*models.DetailsRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/details", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != "invalid_json" {
		t.Fatalf("expected invalid_json, got %s", resp.Code)
	}
}

func TestValidateRequestRejectsFailedValidation(t *testing.T) {
	handler := ValidateRequest[*models.DetailsRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	body, _ := json.Marshal(models.DetailsRequest{Email: "jane@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/details", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != "missing_name" {
		t.Fatalf("expected missing_name, got %s", resp.Code)
	}
}
