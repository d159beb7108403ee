package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JaimeStill/loadextract/pkg/formatting"
	"github.com/JaimeStill/loadextract/pkg/storage"
)

// Resolver maps a storage key to a readable local file, enforcing the
// maximum file size.
type Resolver struct {
	store    storage.System
	maxBytes int64
}

// NewResolver creates a Resolver over store.
func NewResolver(store storage.System, maxBytes int64) *Resolver {
	return &Resolver{store: store, maxBytes: maxBytes}
}

// Resolve returns a local path for key. Stores exposing a sandboxed local
// path are read in place; others are downloaded into workDir.
func (r *Resolver) Resolve(ctx context.Context, key, workDir string) (string, int64, error) {
	obj, err := r.store.Stat(ctx, key)
	if err != nil {
		return "", 0, fmt.Errorf("stat %s: %w", key, err)
	}
	if obj.Size > r.maxBytes {
		return "", obj.Size, fmt.Errorf(
			"%w: %s exceeds the %s limit",
			ErrFileTooLarge,
			formatting.FormatBytes(obj.Size, 1),
			formatting.FormatBytes(r.maxBytes, 0),
		)
	}

	if loc, ok := r.store.(storage.Locator); ok {
		path, err := loc.Path(key)
		if err != nil {
			return "", 0, err
		}
		return path, obj.Size, nil
	}

	return r.download(ctx, key, workDir, obj.Size)
}

func (r *Resolver) download(ctx context.Context, key, workDir string, size int64) (string, int64, error) {
	rc, err := r.store.Download(ctx, key)
	if err != nil {
		return "", 0, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()

	path := filepath.Join(workDir, "source"+filepath.Ext(key))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create local copy: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(rc, r.maxBytes+1))
	if err != nil {
		return "", 0, fmt.Errorf("copy %s: %w", key, err)
	}
	if n > r.maxBytes {
		return "", n, fmt.Errorf("%w: download exceeds the %s limit", ErrFileTooLarge, formatting.FormatBytes(r.maxBytes, 0))
	}
	return path, n, nil
}

// Fingerprint returns the hex SHA-256 of the file at path.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
