package validators

import (
	"net/http"

	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
)

// Handlers provides HTTP handlers for platform discovery
type Handlers struct {
	registry *Registry
}

// NewHandlers creates a new Handlers instance
func NewHandlers(registry *Registry) *Handlers {
	return &Handlers{
		registry: registry,
	}
}

// PlatformsResponse is the response for listing supported platforms
type PlatformsResponse struct {
	Platforms []string `json:"platforms"`
}

// GetPlatforms handles GET /api/platforms
func (h *Handlers) GetPlatforms(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, PlatformsResponse{
		Platforms: h.registry.SupportedPlatforms(),
	})
}
