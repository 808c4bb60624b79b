package common

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the payload returned by the health endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus is the result of a single dependency check.
type CheckStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration"`
}

var startTime = time.Now()

// HealthCheck returns a liveness handler. It answers 200 as long as the
// process is running.
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
		})
	}
}

// ReadinessProbe returns a readiness handler that runs the given dependency
// checks in parallel and answers 503 when any of them fails.
func ReadinessProbe(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		type checkResult struct {
			name     string
			err      error
			duration time.Duration
		}

		results := make(chan checkResult, len(checks))
		var wg sync.WaitGroup
		for name, check := range checks {
			wg.Add(1)
			go func(name string, check func() error) {
				defer wg.Done()
				start := time.Now()
				err := check()
				results <- checkResult{name: name, err: err, duration: time.Since(start)}
			}(name, check)
		}
		go func() {
			wg.Wait()
			close(results)
		}()

		status := "ready"
		checkResults := make(map[string]CheckStatus, len(checks))
		for r := range results {
			cs := CheckStatus{Status: "healthy", Duration: r.duration.String()}
			if r.err != nil {
				cs.Status = "unhealthy"
				cs.Message = r.err.Error()
				status = "not ready"
			}
			checkResults[r.name] = cs
		}

		code := http.StatusOK
		if status != "ready" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
			Checks:    checkResults,
		})
	}
}
