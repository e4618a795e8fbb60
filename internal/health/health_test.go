package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// staticChecker возвращает заранее заданный Check, минуя SimpleChecker.
type staticChecker struct {
	check Check
}

func (c staticChecker) Check() Check { return c.check }

func probe(t *testing.T, handler http.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	return response
}

func TestHandler_Aggregation(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Status
		wantStatus Status
		wantCode   int
	}{
		{
			name:       "all healthy",
			checks:     map[string]Status{"postgres": StatusHealthy, "kafka": StatusHealthy},
			wantStatus: StatusHealthy,
			wantCode:   http.StatusOK,
		},
		{
			name:       "one unhealthy dominates",
			checks:     map[string]Status{"postgres": StatusHealthy, "kafka": StatusUnhealthy},
			wantStatus: StatusUnhealthy,
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "degraded keeps 200",
			checks:     map[string]Status{"postgres": StatusHealthy, "kafka": StatusDegraded},
			wantStatus: StatusDegraded,
			wantCode:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler("v1.0.0")
			for name, status := range tt.checks {
				handler.RegisterChecker(name, staticChecker{check: Check{Name: name, Status: status}})
			}

			w := probe(t, handler.ServeHTTP, "/healthz")
			if w.Code != tt.wantCode {
				t.Errorf("status code: got %d, want %d", w.Code, tt.wantCode)
			}

			response := decodeResponse(t, w)
			if response.Status != tt.wantStatus {
				t.Errorf("overall status: got %s, want %s", response.Status, tt.wantStatus)
			}
			if response.Version != "v1.0.0" {
				t.Errorf("version: got %s, want v1.0.0", response.Version)
			}
			if len(response.Checks) != len(tt.checks) {
				t.Errorf("checks: got %d, want %d", len(response.Checks), len(tt.checks))
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	w := probe(t, LivenessHandler, "/livez")

	if w.Code != http.StatusOK {
		t.Errorf("status code: got %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body: got %q, want \"ok\"", w.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return nil
	}))

	w := probe(t, handler.ReadinessHandler, "/readyz")
	if w.Code != http.StatusOK {
		t.Errorf("status code: got %d, want 200", w.Code)
	}
	if w.Body.String() != "ready" {
		t.Errorf("body: got %q, want \"ready\"", w.Body.String())
	}

	handler.RegisterChecker("kafka", NewSimpleChecker("kafka", func() error {
		return errors.New("connection refused")
	}))

	w = probe(t, handler.ReadinessHandler, "/readyz")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status code: got %d, want 503", w.Code)
	}
	if w.Body.String() != "not ready" {
		t.Errorf("body: got %q, want \"not ready\"", w.Body.String())
	}
}

func TestSimpleChecker(t *testing.T) {
	healthy := NewSimpleChecker("postgres", func() error { return nil }).Check()
	if healthy.Status != StatusHealthy {
		t.Errorf("status: got %s, want healthy", healthy.Status)
	}
	if healthy.Name != "postgres" {
		t.Errorf("name: got %s, want postgres", healthy.Name)
	}

	failing := NewSimpleChecker("postgres", func() error {
		return errors.New("connection refused")
	}).Check()
	if failing.Status != StatusUnhealthy {
		t.Errorf("status: got %s, want unhealthy", failing.Status)
	}
	if failing.Message != "connection refused" {
		t.Errorf("message: got %q, want \"connection refused\"", failing.Message)
	}
}
