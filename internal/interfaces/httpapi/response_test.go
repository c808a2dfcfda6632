package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boxlax/fantasy-core/internal/usecase"
	sonic "github.com/bytedance/sonic"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantReason string
	}{
		{usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput"},
		{usecase.ErrInvalidOrder, http.StatusBadRequest, "invalidOrder"},
		{usecase.ErrNotFound, http.StatusNotFound, "notFound"},
		{usecase.ErrNotReady, http.StatusConflict, "gameNotReady"},
		{usecase.ErrAlreadyFinalized, http.StatusConflict, "alreadyFinalized"},
		{usecase.ErrInconsistentScore, http.StatusUnprocessableEntity, "inconsistentScore"},
		{usecase.ErrUpstreamTimeout, http.StatusGatewayTimeout, "upstreamTimeout"},
		{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internalError"},
	}
	for _, tc := range cases {
		got := mapError(fmt.Errorf("wrapped: %w", tc.err))
		if got.HTTPStatus != tc.wantStatus {
			t.Fatalf("%v: status got=%d want=%d", tc.err, got.HTTPStatus, tc.wantStatus)
		}
		if got.Reason != tc.wantReason {
			t.Fatalf("%v: reason got=%s want=%s", tc.err, got.Reason, tc.wantReason)
		}
	}
}
