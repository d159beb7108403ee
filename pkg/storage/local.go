package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/loadextract/pkg/lifecycle"
)

type local struct {
	root   string
	logger *slog.Logger
}

// NewLocal creates a storage system rooted at dir. Keys are resolved relative
// to the root and any key resolving outside it is rejected with ErrInvalidKey.
func NewLocal(dir string, logger *slog.Logger) (System, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage root required")
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	return &local{
		root:   filepath.Clean(root),
		logger: logger.With("system", "storage", "provider", ProviderLocal),
	}, nil
}

func (l *local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting storage system", "root", l.root)

	lc.OnStartup(func() {
		info, err := os.Stat(l.root)
		if err != nil {
			l.logger.Error("storage root unavailable", "root", l.root, "error", err)
			return
		}
		if !info.IsDir() {
			l.logger.Error("storage root is not a directory", "root", l.root)
			return
		}
		l.logger.Info("storage root ready", "root", l.root)
	})

	return nil
}

// Path resolves key to an absolute path inside the root.
func (l *local) Path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if filepath.IsAbs(key) || filepath.VolumeName(key) != "" {
		return "", ErrInvalidKey
	}

	full := filepath.Join(l.root, filepath.FromSlash(key))
	if !within(l.root, full) {
		return "", ErrInvalidKey
	}

	// A symlink inside the root may still point outside of it.
	if resolved, err := filepath.EvalSymlinks(full); err == nil {
		root, rootErr := filepath.EvalSymlinks(l.root)
		if rootErr != nil {
			root = l.root
		}
		if !within(root, resolved) {
			return "", ErrInvalidKey
		}
	}

	return full, nil
}

func (l *local) Stat(ctx context.Context, key string) (*Object, error) {
	full, err := l.Path(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	return &Object{
		Key:         key,
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(full))),
	}, nil
}

func (l *local) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := l.Path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}

	return f, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
