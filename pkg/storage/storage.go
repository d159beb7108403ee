// Package storage provides read access to stored document content.
// Two backends are available: a sandboxed local filesystem root and
// Azure Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/JaimeStill/loadextract/pkg/lifecycle"
)

// Object describes stored content without reading it.
type Object struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// System exposes stored document content by key.
type System interface {
	// Start registers a startup hook that verifies the backing store is reachable.
	Start(lc *lifecycle.Coordinator) error
	// Stat returns size metadata for the object at key.
	// Returns ErrNotFound if the object does not exist.
	Stat(ctx context.Context, key string) (*Object, error)
	// Download returns a stream for the object at key. The caller must close the reader.
	// Returns ErrNotFound if the object does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// Locator is implemented by backends whose objects already live on the local
// filesystem, letting callers hand paths to external tools without copying.
type Locator interface {
	Path(key string) (string, error)
}

// New creates the storage system selected by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderLocal:
		return NewLocal(cfg.Root, logger)
	case ProviderAzure:
		return NewAzure(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.ContainsRune(key, 0) {
		return ErrInvalidKey
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	for segment := range strings.SplitSeq(strings.ReplaceAll(key, "\\", "/"), "/") {
		if segment == ".." {
			return ErrInvalidKey
		}
	}
	if cleaned == "/" {
		return ErrInvalidKey
	}
	return nil
}
