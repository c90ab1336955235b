package api

import (
	"time"

	"github.com/nauticalab/dotcfg/pkg/config"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// VersionResponse represents the version information
type VersionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion,omitempty"`
}

// ConfigResponse carries the whole resolved configuration
type ConfigResponse struct {
	Config   *config.Config `json:"config"`
	Keys     int            `json:"keys"`
	LoadedAt time.Time      `json:"loadedAt"`
}

// ValueResponse carries the value found at one dotted path
type ValueResponse struct {
	Path     string    `json:"path"`
	Value    any       `json:"value"`
	LoadedAt time.Time `json:"loadedAt"`
}

// ReloadResponse reports the snapshot installed by a reload
type ReloadResponse struct {
	Success  bool      `json:"success"`
	Keys     int       `json:"keys"`
	LoadedAt time.Time `json:"loadedAt"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
