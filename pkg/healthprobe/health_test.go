package healthprobe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthAlwaysOK(t *testing.T) {
	probe := New("arb-monitor")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	probe.Health()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status healthy, got %q", resp.Status)
	}
	if resp.Service != "arb-monitor" {
		t.Errorf("expected service arb-monitor, got %q", resp.Service)
	}
}

func TestReadyTransitions(t *testing.T) {
	probe := New("arb-monitor")

	check := func(wantCode int, wantStatus string) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		probe.Ready()(rec, req)

		if rec.Code != wantCode {
			t.Errorf("expected %d, got %d", wantCode, rec.Code)
		}
		var resp Response
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != wantStatus {
			t.Errorf("expected status %q, got %q", wantStatus, resp.Status)
		}
	}

	// Not ready until marked.
	check(http.StatusServiceUnavailable, "not_ready")

	probe.SetReady(true)
	check(http.StatusOK, "ready")

	probe.SetReady(false)
	check(http.StatusServiceUnavailable, "not_ready")
}
