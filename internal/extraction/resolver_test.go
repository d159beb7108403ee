package extraction_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/loadextract/internal/extraction"
	"github.com/JaimeStill/loadextract/pkg/storage"
)

// remoteStore hides the local Locator so the resolver must download.
type remoteStore struct {
	storage.System
}

func newStore(t *testing.T) (string, storage.System) {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "tenant"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "tenant", "load.pdf"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewLocal(root, discardLogger())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return root, store
}

func TestResolverLocal(t *testing.T) {
	root, store := newStore(t)

	path, size, err := extraction.NewResolver(store, 1024).Resolve(context.Background(), "tenant/load.pdf", t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	if !strings.HasPrefix(path, root) {
		t.Errorf("path %q is not under root %q", path, root)
	}
}

func TestResolverDownload(t *testing.T) {
	_, store := newStore(t)
	workDir := t.TempDir()

	path, _, err := extraction.NewResolver(remoteStore{store}, 1024).Resolve(context.Background(), "tenant/load.pdf", workDir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Dir(path) != workDir || filepath.Ext(path) != ".pdf" {
		t.Errorf("path = %q, want a .pdf under %q", path, workDir)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("downloaded %q, %v", data, err)
	}
}

func TestResolverErrors(t *testing.T) {
	_, store := newStore(t)

	tests := []struct {
		name     string
		key      string
		maxBytes int64
		want     error
	}{
		{"too large", "tenant/load.pdf", 4, extraction.ErrFileTooLarge},
		{"traversal", "../outside.pdf", 1024, storage.ErrInvalidKey},
		{"missing", "tenant/missing.pdf", 1024, storage.ErrNotFound},
		{"empty key", "", 1024, storage.ErrEmptyKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := extraction.NewResolver(store, tt.maxBytes).Resolve(context.Background(), tt.key, t.TempDir())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.pdf")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := extraction.Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"; got != want {
		t.Errorf("Fingerprint = %s, want %s", got, want)
	}
}
