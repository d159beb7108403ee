package api_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/api"
	"github.com/JaimeStill/loadextract/internal/config"
	"github.com/JaimeStill/loadextract/internal/documents"
	"github.com/JaimeStill/loadextract/internal/events"
	"github.com/JaimeStill/loadextract/internal/examples"
	"github.com/JaimeStill/loadextract/internal/infrastructure"
	"github.com/JaimeStill/loadextract/pkg/pagination"
	"github.com/JaimeStill/loadextract/pkg/storage"
)

func setup(t *testing.T) (http.Handler, *documents.Memory) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "load.pdf"), []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewLocal(root, logger)
	if err != nil {
		t.Fatal(err)
	}

	docs := documents.NewMemory(15*time.Minute, nil, logger)
	domain := &api.Domain{
		Documents: docs,
		Events:    events.NewMemory(logger, nil),
		Examples:  examples.NewMemory(500, nil, logger),
	}
	rt := &api.Runtime{
		Infrastructure: &infrastructure.Infrastructure{Logger: logger, Storage: store},
		Pagination:     pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	}
	cfg := &config.APIConfig{BasePath: "/api", MaxBodySize: "1MB"}

	return api.NewHandler(cfg, rt, domain), docs
}

func TestRoutes(t *testing.T) {
	h, docs := setup(t)
	doc := docs.Insert(documents.Document{Filename: "load.pdf", StorageKey: "load.pdf", Status: documents.StatusFailed})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"list documents", http.MethodGet, "/api/documents", "", http.StatusOK},
		{"find document", http.MethodGet, "/api/documents/" + doc.ID.String(), "", http.StatusOK},
		{"document events", http.MethodGet, "/api/documents/" + doc.ID.String() + "/events", "", http.StatusOK},
		{"retry document", http.MethodPost, "/api/documents/" + doc.ID.String() + "/retry", "", http.StatusAccepted},
		{"list examples", http.MethodGet, "/api/examples?tenant_id=" + uuid.NewString(), "", http.StatusOK},
		{"invalid example", http.MethodPost, "/api/examples", `{"tenantId":"` + uuid.NewString() + `","correctedDraft":{}}`, http.StatusBadRequest},
		{"stat stored file", http.MethodGet, "/api/storage/load.pdf", "", http.StatusOK},
		{"missing stored file", http.MethodGet, "/api/storage/missing.pdf", "", http.StatusNotFound},
		{"outside base path", http.MethodGet, "/documents", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}
