// Package api assembles the ops API: document inspection and retry, extract
// event history, and learning example submission.
package api

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/loadextract/internal/config"
	"github.com/JaimeStill/loadextract/pkg/middleware"
)

// NewHandler creates the API handler with all domain routes and middleware.
// Routes are served under cfg.BasePath.
func NewHandler(cfg *config.APIConfig, rt *Runtime, domain *Domain) http.Handler {
	mux := http.NewServeMux()
	patterns := registerRoutes(mux, cfg, rt, domain)
	rt.Logger.Debug("api routes registered", "base_path", cfg.BasePath, "routes", len(patterns))

	base := strings.TrimSuffix(cfg.BasePath, "/")
	return middleware.Chain(
		http.StripPrefix(base, mux),
		middleware.Logger(rt.Logger),
		middleware.Recover(rt.Logger),
	)
}
