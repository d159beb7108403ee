package examples_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/drafts"
	"github.com/JaimeStill/loadextract/internal/examples"
	"github.com/JaimeStill/loadextract/pkg/routes"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecentNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := examples.NewMemory(10, nil, discard())
	tenant := uuid.New()

	for i := range 3 {
		store.Add(examples.Example{
			TenantID:      tenant,
			ExtractedText: string(rune('a' + i)),
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
	}
	store.Add(examples.Example{TenantID: uuid.New(), CreatedAt: base.Add(time.Hour * 10)})

	got, err := store.Recent(context.Background(), tenant, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("recent: got %d, want 2", len(got))
	}
	if got[0].ExtractedText != "c" || got[1].ExtractedText != "b" {
		t.Errorf("order: got %s, %s", got[0].ExtractedText, got[1].ExtractedText)
	}
}

func TestCorpusRetention(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := examples.NewMemory(3, nil, discard())
	tenant := uuid.New()
	other := uuid.New()

	store.Add(examples.Example{TenantID: other, CreatedAt: base})
	for i := range 5 {
		store.Add(examples.Example{TenantID: tenant, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	got, _ := store.Recent(context.Background(), tenant, 100)
	if len(got) != 3 {
		t.Errorf("tenant corpus: got %d, want 3", len(got))
	}
	if !got[2].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("oldest retained: got %v", got[2].CreatedAt)
	}

	if kept, _ := store.Recent(context.Background(), other, 100); len(kept) != 1 {
		t.Errorf("other tenant should be untouched, got %d", len(kept))
	}
}

func TestCreateValidatesDraft(t *testing.T) {
	store := examples.NewMemory(10, nil, discard())
	tenant := uuid.New()

	tests := []struct {
		name    string
		cmd     examples.CreateCommand
		wantErr error
	}{
		{
			name: "valid",
			cmd: examples.CreateCommand{
				TenantID:       tenant,
				ExtractedText:  "Broker: Echo\nLoad #: 123",
				CorrectedDraft: json.RawMessage(`{"loadNumber":"123","stops":[{"type":"PICKUP"},{"type":"DELIVERY"}]}`),
			},
		},
		{
			name: "missing tenant",
			cmd: examples.CreateCommand{
				CorrectedDraft: json.RawMessage(`{"loadNumber":"123","stops":[]}`),
			},
			wantErr: examples.ErrMissingTenant,
		},
		{
			name: "schema violation",
			cmd: examples.CreateCommand{
				TenantID:       tenant,
				CorrectedDraft: json.RawMessage(`{"loadNumber":"123","palletCount":-4,"stops":[]}`),
			},
			wantErr: drafts.ErrInvalidDraft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := store.Create(context.Background(), tt.cmd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if ex.CorrectedDraft.LoadNumber != "123" || ex.ID == uuid.Nil {
				t.Errorf("unexpected example: %+v", ex)
			}
		})
	}
}

func TestHandler(t *testing.T) {
	store := examples.NewMemory(10, nil, discard())
	mux := http.NewServeMux()
	routes.Register(mux, store.Handler(1024*1024).Routes())

	tenant := uuid.New()
	body, _ := json.Marshal(map[string]any{
		"tenantId":       tenant,
		"extractedText":  "Customer: Acme",
		"correctedDraft": map[string]any{"loadNumber": "L1", "customerName": "Acme", "stops": []any{}},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/examples", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/examples", bytes.NewReader([]byte(`{"unknown":1}`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field: got %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/examples?tenant_id="+tenant.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var list []examples.Example
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].CorrectedDraft.CustomerName != "Acme" {
		t.Errorf("unexpected list: %+v", list)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/examples", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing tenant: got %d, want 400", rec.Code)
	}
}
