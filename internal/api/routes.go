package api

import (
	"net/http"

	"github.com/JaimeStill/loadextract/internal/config"
	"github.com/JaimeStill/loadextract/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	cfg *config.APIConfig,
	rt *Runtime,
	domain *Domain,
) []string {
	return routes.Register(
		mux,
		domain.Documents.Handler().Routes(),
		domain.Events.Handler().Routes(),
		domain.Examples.Handler(cfg.MaxBodySizeBytes()).Routes(),
		newStorageHandler(rt.Storage, rt.Logger).routes(),
	)
}
