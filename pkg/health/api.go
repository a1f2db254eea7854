package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Check probes one dependency. A nil error means it is up.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Options configures the health endpoint.
type Options struct {
	Version string
	// Sessions reports the number of live booking sessions.
	Sessions func() int
	Checks   []Check
	Timeout  time.Duration
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime"`
	GoVersion string            `json:"go_version"`
	Sessions  int               `json:"sessions"`
	Checks    map[string]string `json:"checks,omitempty"`
	Memory    struct {
		Alloc      uint64 `json:"alloc"`      // bytes allocated and not yet freed
		TotalAlloc uint64 `json:"totalAlloc"` // total bytes allocated (even if freed)
		Sys        uint64 `json:"sys"`        // bytes obtained from system
		NumGC      uint32 `json:"numGC"`      // number of garbage collections
	} `json:"memory"`
}

var startTime = time.Now()

func HealthGet(opts Options) http.HandlerFunc {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		health := HealthResponse{
			Status:    StatusHealthy,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   opts.Version,
			Uptime:    time.Since(startTime).String(),
			GoVersion: runtime.Version(),
		}
		if opts.Sessions != nil {
			health.Sessions = opts.Sessions()
		}

		health.Memory.Alloc = memStats.Alloc
		health.Memory.TotalAlloc = memStats.TotalAlloc
		health.Memory.Sys = memStats.Sys
		health.Memory.NumGC = memStats.NumGC

		statusCode := http.StatusOK
		if len(opts.Checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
			defer cancel()

			health.Checks = make(map[string]string, len(opts.Checks))
			for _, c := range opts.Checks {
				if err := c.Ping(ctx); err != nil {
					health.Checks[c.Name] = err.Error()
					health.Status = StatusDegraded
					statusCode = http.StatusServiceUnavailable
					continue
				}
				health.Checks[c.Name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(health); err != nil {
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Failed to encode health check response",
			})
			return
		}
	}
}
