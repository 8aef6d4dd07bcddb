package gateway

import (
	"net/http"
	"time"

	"github.com/flemzord/relaybot/internal/provider"
)

// StatusResponse is the JSON response for GET /.
type StatusResponse struct {
	Status      string               `json:"status"`
	Uptime      float64              `json:"uptime_seconds"`
	Sessions    int                  `json:"sessions"`
	Usable      int                  `json:"usable_credentials"`
	Credentials []provider.KeyStatus `json:"credentials"`
	Webhook     bool                 `json:"webhook"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"` // "ok" or "degraded"
	Sessions int    `json:"sessions"`
	Usable   int    `json:"usable_credentials"`
	Total    int    `json:"total_credentials"`
}

// handleStatus returns an http.HandlerFunc for GET /.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Status:      "ok",
			Uptime:      g.now().Sub(g.startedAt).Truncate(time.Second).Seconds(),
			Credentials: []provider.KeyStatus{},
			Webhook:     g.deps.Webhook != nil,
		}
		if g.deps.Sessions != nil {
			resp.Sessions = g.deps.Sessions.Len()
		}
		if g.deps.Credentials != nil {
			resp.Credentials = g.deps.Credentials.Snapshot()
			resp.Usable = countUsable(resp.Credentials)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 while at least one credential is usable, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}
		if g.deps.Sessions != nil {
			resp.Sessions = g.deps.Sessions.Len()
		}

		status := http.StatusOK
		if g.deps.Credentials != nil {
			snap := g.deps.Credentials.Snapshot()
			resp.Total = len(snap)
			resp.Usable = countUsable(snap)
			if resp.Usable == 0 {
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, status, resp)
	}
}

func countUsable(keys []provider.KeyStatus) int {
	n := 0
	for _, k := range keys {
		if k.Usable {
			n++
		}
	}
	return n
}
