package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func newTestChecker(timeout time.Duration) *Checker {
	return New(timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeCatalog int

func (f fakeCatalog) Len() int { return int(f) }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "default timeout", timeout: 0, want: DefaultCheckTimeout},
		{name: "negative timeout", timeout: -time.Second, want: DefaultCheckTimeout},
		{name: "custom timeout", timeout: 10 * time.Second, want: 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.timeout, nil).checkTimeout; got != tt.want {
				t.Errorf("checkTimeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecker_RegisterCheck(t *testing.T) {
	checker := newTestChecker(time.Second)
	checker.RegisterCheck("b", func(context.Context) error { return nil })
	checker.RegisterCheck("a", func(context.Context) error { return nil })
	checker.RegisterCheck("a", func(context.Context) error { return errors.New("replaced") })

	if got := checker.ListChecks(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ListChecks() = %v", got)
	}
	if status := checker.CheckReadiness(context.Background()); status.Checks["a"].Message != "replaced" {
		t.Errorf("check a = %+v, want the replacement", status.Checks["a"])
	}

	checker.UnregisterCheck("a")
	if got := checker.ListChecks(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("ListChecks() = %v", got)
	}
}

func TestChecker_CheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no checks",
			wantStatus: StatusReady,
			wantChecks: map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"catalog": CatalogCheck(fakeCatalog(2)),
				"config":  func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
			wantChecks: map[string]string{"catalog": StatusOK, "config": StatusOK},
		},
		{
			name: "empty catalog",
			checks: map[string]CheckFunc{
				"catalog": CatalogCheck(fakeCatalog(0)),
				"config":  func(context.Context) error { return nil },
			},
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"catalog": StatusUnhealthy, "config": StatusOK},
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"slow": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(10 * time.Millisecond)
					return nil
				},
			},
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"slow": StatusUnhealthy},
		},
		{
			name: "panic",
			checks: map[string]CheckFunc{
				"broken": func(context.Context) error { panic("boom") },
			},
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"broken": StatusUnhealthy},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newTestChecker(50 * time.Millisecond)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			got := make(map[string]string, len(status.Checks))
			for name, r := range status.Checks {
				got[name] = r.Status
			}
			if !reflect.DeepEqual(got, tt.wantChecks) {
				t.Errorf("checks = %v, want %v", got, tt.wantChecks)
			}
		})
	}
}

func TestChecker_TimeoutMessage(t *testing.T) {
	checker := newTestChecker(10 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	status := checker.CheckReadiness(context.Background())
	if got := status.Checks["slow"].Message; got != ErrCheckTimeout.Error() {
		t.Errorf("Message = %q, want %q", got, ErrCheckTimeout.Error())
	}
}

func TestChecker_Draining(t *testing.T) {
	checker := newTestChecker(time.Second)
	checker.RegisterCheck("catalog", CatalogCheck(fakeCatalog(1)))

	checker.SetDraining(true)
	if status := checker.CheckReadiness(context.Background()); status.Status != StatusDraining || status.Ready() {
		t.Errorf("draining status = %+v", status)
	}
	if status := checker.CheckLiveness(context.Background()); status.Status != StatusOK {
		t.Errorf("liveness while draining = %q", status.Status)
	}

	checker.SetDraining(false)
	if status := checker.CheckReadiness(context.Background()); !status.Ready() {
		t.Errorf("status after draining = %+v", status)
	}
}

func TestHandlers(t *testing.T) {
	ready := newTestChecker(time.Second)
	ready.RegisterCheck("catalog", CatalogCheck(fakeCatalog(1)))
	empty := newTestChecker(time.Second)
	empty.RegisterCheck("catalog", CatalogCheck(fakeCatalog(0)))

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		method     string
		wantCode   int
		wantStatus string
	}{
		{name: "liveness", handler: empty.LivenessHandler(), method: http.MethodGet, wantCode: http.StatusOK, wantStatus: StatusOK},
		{name: "ready", handler: ready.ReadinessHandler(), method: http.MethodGet, wantCode: http.StatusOK, wantStatus: StatusReady},
		{name: "not ready", handler: empty.ReadinessHandler(), method: http.MethodGet, wantCode: http.StatusServiceUnavailable, wantStatus: StatusDegraded},
		{name: "head", handler: ready.ReadinessHandler(), method: http.MethodHead, wantCode: http.StatusOK},
		{name: "post", handler: ready.LivenessHandler(), method: http.MethodPost, wantCode: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, "/probe", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantStatus == "" {
				if tt.method == http.MethodHead && rec.Body.Len() != 0 {
					t.Errorf("HEAD returned a body")
				}
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
		})
	}
}
