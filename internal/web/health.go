package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Check probes one dependency for readiness.
type Check struct {
	Name    string
	Ping    func(ctx context.Context) error
	Timeout time.Duration
}

// Health exposes liveness and readiness handlers.
type Health struct {
	Checks []Check
}

// Live reports that the process is up.
func (h Health) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready pings every dependency and reports each result.
func (h Health) Ready(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]string, len(h.Checks))
	healthy := true
	for _, c := range h.Checks {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 500 * time.Millisecond
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			status[c.Name] = err.Error()
			healthy = false
			continue
		}
		status[c.Name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
