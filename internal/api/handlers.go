package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nauticalab/dotcfg/internal/logger"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store  *Store
	logger *logger.Logger
	// version is the application version
	version string
	// gitCommit is the git commit hash of the build
	gitCommit string
	// buildTime is the time when the application was built
	buildTime string
	// goVersion is the Go version used to build the application
	goVersion string
}

// NewHandler creates a new Handler instance
func NewHandler(store *Store, log *logger.Logger, version, gitCommit, buildTime, goVersion string) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		store:     store,
		logger:    log,
		version:   version,
		gitCommit: gitCommit,
		buildTime: buildTime,
		goVersion: goVersion,
	}
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Version handles GET /api/v1/version
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, VersionResponse{
		Version:   h.version,
		GitCommit: h.gitCommit,
		BuildTime: h.buildTime,
		GoVersion: h.goVersion,
	})
}

// GetConfig handles GET /api/v1/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		respondServiceUnavailable(w, "Configuration not loaded")
		return
	}

	respondSuccess(w, ConfigResponse{
		Config:   snap.Config,
		Keys:     len(snap.Config.Flatten()),
		LoadedAt: snap.LoadedAt,
	})
}

// GetValue handles GET /api/v1/config/{path}
func (h *Handler) GetValue(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		respondServiceUnavailable(w, "Configuration not loaded")
		return
	}

	path := chi.URLParam(r, "path")
	value, ok := snap.Config.Get(path)
	if !ok {
		respondNotFound(w, fmt.Sprintf("No configuration value at %q", path))
		return
	}

	respondSuccess(w, ValueResponse{
		Path:     path,
		Value:    value,
		LoadedAt: snap.LoadedAt,
	})
}

// Reload handles POST /api/v1/reload
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Reload(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("configuration reload failed, keeping previous snapshot")
		respondInternalError(w, err.Error())
		return
	}

	keys := len(snap.Config.Flatten())
	h.logger.Info().Int("keys", keys).Msg("configuration reloaded")

	respondSuccess(w, ReloadResponse{
		Success:  true,
		Keys:     keys,
		LoadedAt: snap.LoadedAt,
	})
}
