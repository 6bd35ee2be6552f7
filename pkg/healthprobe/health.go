// Package healthprobe provides liveness and readiness HTTP handlers.
package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Probe tracks process liveness and readiness.
type Probe struct {
	service   string
	startTime time.Time
	ready     atomic.Bool
}

// New creates a probe for the named service.
func New(service string) *Probe {
	return &Probe{
		service:   service,
		startTime: time.Now(),
	}
}

// SetReady marks the service as ready to serve traffic.
func (p *Probe) SetReady(ready bool) {
	p.ready.Store(ready)
}

// Response is the body of a health or readiness check.
type Response struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Message string `json:"message,omitempty"`
}

// Health returns a liveness handler. It answers 200 whenever the process is
// up.
func (p *Probe) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		p.write(w, http.StatusOK, Response{
			Service: p.service,
			Status:  "healthy",
			Uptime:  time.Since(p.startTime).String(),
		})
	}
}

// Ready returns a readiness handler. It answers 503 until SetReady(true).
func (p *Probe) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !p.ready.Load() {
			p.write(w, http.StatusServiceUnavailable, Response{
				Service: p.service,
				Status:  "not_ready",
				Message: "service is starting",
			})
			return
		}

		p.write(w, http.StatusOK, Response{
			Service: p.service,
			Status:  "ready",
			Uptime:  time.Since(p.startTime).String(),
		})
	}
}

func (p *Probe) write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
