package server

import (
	"encoding/json"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/teemow/gdrive-endpoint/internal/google"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusUnavailable  = "unavailable"
)

// HealthChecker serves /healthz, /readyz and /healthz/detailed for the
// HTTP transport
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startTime time.Time

	listAccounts func() ([]string, error)
}

// NewHealthChecker returns a checker that starts out ready. sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		sc:           sc,
		startTime:    time.Now(),
		listAccounts: google.ListAccounts,
	}
	h.ready.Store(true)
	return h
}

// SetReady flips readiness, e.g. while draining on shutdown
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// readinessCheck reports "" when healthy and the failing state otherwise
type readinessCheck struct {
	name string
	run  func() string
}

func (h *HealthChecker) checks() []readinessCheck {
	return []readinessCheck{
		{"ready", func() string {
			if !h.ready.Load() {
				return healthStatusNotReady
			}
			return ""
		}},
		{"shutdown", func() string {
			if h.sc != nil && h.sc.IsShutdown() {
				return healthStatusShuttingDown
			}
			return ""
		}},
		// without a store only the transfer operations are lost, so a
		// missing store is healthy; a store whose directory vanished is not
		{"store", func() string {
			if h.sc == nil || h.sc.Store() == nil {
				return ""
			}
			if info, err := os.Stat(h.sc.Store().Dir()); err != nil || !info.IsDir() {
				return healthStatusUnavailable
			}
			return ""
		}},
	}
}

// evaluate runs every check. status is the first failing state, or ok.
func (h *HealthChecker) evaluate() (status string, results map[string]string) {
	status = healthStatusOK
	results = make(map[string]string)
	for _, c := range h.checks() {
		state := c.run()
		if state == "" {
			results[c.name] = healthStatusOK
			continue
		}
		results[c.name] = state
		if status == healthStatusOK {
			status = state
		}
	}
	return status, results
}

// HealthResponse is the body of /healthz and /readyz
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed
type DetailedHealthResponse struct {
	Status         string            `json:"status"`
	Uptime         string            `json:"uptime"`
	DefaultAccount string            `json:"default_account,omitempty"`
	Accounts       []string          `json:"accounts"`
	Checks         map[string]string `json:"checks"`
}

func writeHealth(w http.ResponseWriter, healthy bool, body any) {
	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler answers ok while the process runs
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, true, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers 503 while any check fails. A failing store or
// shutdown reports "not ready" as the overall status.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, results := h.evaluate()
		healthy := status == healthStatusOK
		if !healthy {
			status = healthStatusNotReady
		}
		writeHealth(w, healthy, HealthResponse{Status: status, Checks: results})
	})
}

// DetailedHealthHandler adds uptime and the connected accounts
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, results := h.evaluate()
		resp := DetailedHealthResponse{
			Status:   status,
			Uptime:   time.Since(h.startTime).Truncate(time.Second).String(),
			Accounts: []string{},
			Checks:   results,
		}
		if h.sc != nil {
			resp.DefaultAccount = h.sc.DefaultAccount()
		}
		if accounts, err := h.listAccounts(); err == nil && accounts != nil {
			resp.Accounts = accounts
		}
		writeHealth(w, status == healthStatusOK, resp)
	})
}

// RegisterHealthEndpoints mounts the three handlers on mux
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
