// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"encoding/json"
	"net/http"
)

// Handler serves the liveness probe. No dependencies: a 200 here means
// only that the process is up and routing requests.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Serve handles GET /heartbeat.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
