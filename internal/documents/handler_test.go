package documents_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/documents"
	"github.com/JaimeStill/loadextract/pkg/pagination"
	"github.com/JaimeStill/loadextract/pkg/routes"
)

func setupMux(store *documents.Memory) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, store.Handler().Routes())
	return mux
}

func TestHandlerList(t *testing.T) {
	store := newStore(newClock())
	store.Insert(documents.Document{Filename: "a.pdf"})
	store.Insert(documents.Document{Filename: "b.pdf", Status: documents.StatusFailed})

	req := httptest.NewRequest(http.MethodGet, "/documents?status=failed", nil)
	rec := httptest.NewRecorder()
	setupMux(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var result pagination.PageResult[documents.Document]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || result.Data[0].Filename != "b.pdf" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestHandlerFind(t *testing.T) {
	store := newStore(newClock())
	doc := store.Insert(documents.Document{Filename: "a.pdf", UploadedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"found", "/documents/" + doc.ID.String(), http.StatusOK},
		{"missing", "/documents/" + uuid.NewString(), http.StatusNotFound},
		{"bad id", "/documents/not-a-uuid", http.StatusBadRequest},
	}

	mux := setupMux(store)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestHandlerRetry(t *testing.T) {
	store := newStore(newClock())
	failed := store.Insert(documents.Document{Status: documents.StatusNeedsReview})
	uploaded := store.Insert(documents.Document{})

	mux := setupMux(store)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/documents/"+failed.ID.String()+"/retry", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("retry review doc: got %d, want 202", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/documents/"+uploaded.ID.String()+"/retry", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("retry uploaded doc: got %d, want 409", rec.Code)
	}
}
