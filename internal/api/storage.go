package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/loadextract/pkg/handlers"
	"github.com/JaimeStill/loadextract/pkg/routes"
	"github.com/JaimeStill/loadextract/pkg/storage"
)

// storageHandler lets operators confirm that a document's storage key
// resolves before retrying it.
type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.stat},
		},
	}
}

func (h *storageHandler) stat(w http.ResponseWriter, r *http.Request) {
	obj, err := h.store.Stat(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, obj)
}
