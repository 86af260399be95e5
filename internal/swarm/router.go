package swarm

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthResponse is served on /healthz
type HealthResponse struct {
	Status      string `json:"status"`
	PeerKey     string `json:"peer_key"`
	Connections int    `json:"connections"`
	Connecting  int    `json:"connecting"`
}

// Router returns the HTTP surface of the node: the peer endpoint, a health
// check and, when metrics are configured, the Prometheus endpoint.
func (s *Swarm) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware(s.logger))
	r.Use(loggingMiddleware(s.logger, "/healthz", "/metrics"))

	r.Get("/swarm", s.serveSwarm)
	r.Get("/healthz", s.serveHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}

func (s *Swarm) serveHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:      "ok",
		PeerKey:     s.peerKey,
		Connections: stats.Connections,
		Connecting:  stats.Connecting,
	})
}
