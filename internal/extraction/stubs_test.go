package extraction_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/loadextract/internal/config"
	"github.com/JaimeStill/loadextract/internal/documents"
	"github.com/JaimeStill/loadextract/internal/events"
	"github.com/JaimeStill/loadextract/internal/examples"
	"github.com/JaimeStill/loadextract/internal/extraction"
	"github.com/JaimeStill/loadextract/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRunner fakes installed OCR tools. Tools without a handler fail.
type stubRunner struct {
	mu        sync.Mutex
	installed map[string]bool
	handlers  map[string]func(args []string) ([]byte, error)
	calls     []string
}

func newStubRunner(tools ...string) *stubRunner {
	r := &stubRunner{
		installed: make(map[string]bool),
		handlers:  make(map[string]func(args []string) ([]byte, error)),
	}
	for _, t := range tools {
		r.installed[t] = true
	}
	return r
}

func (r *stubRunner) handle(tool string, fn func(args []string) ([]byte, error)) {
	r.handlers[tool] = fn
}

func (r *stubRunner) Available(name string) bool {
	return r.installed[name]
}

func (r *stubRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()

	fn, ok := r.handlers[name]
	if !ok {
		return nil, &extraction.ToolError{Tool: name, Err: errors.New("exit status 1")}
	}
	return fn(args)
}

func (r *stubRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// rasterPages makes the pdftoppm stub write n page images.
func rasterPages(n int) func(args []string) ([]byte, error) {
	return func(args []string) ([]byte, error) {
		prefix := args[len(args)-1]
		for i := 1; i <= n; i++ {
			name := prefix + "-" + string(rune('0'+i)) + ".png"
			if err := os.WriteFile(name, []byte("png"), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// stubReader returns fixed text. ocr.pdf outputs return ocrText.
type stubReader struct {
	pages   int
	text    string
	ocrText string
	panicOn string
}

func (r *stubReader) PageCount(path string) (int, error) {
	if r.panicOn != "" && strings.Contains(path, r.panicOn) {
		panic("malformed xref table")
	}
	if r.pages == 0 {
		return 1, nil
	}
	return r.pages, nil
}

func (r *stubReader) Text(path string) (string, error) {
	if filepath.Base(path) == "ocr.pdf" {
		return r.ocrText, nil
	}
	return r.text, nil
}

func extractionConfig() config.ExtractionConfig {
	return config.ExtractionConfig{
		ScannedTextThreshold: 20,
		MaxFileMB:            20,
		MaxPages:             10,
		OCRTimeoutMS:         1000,
		OCRLanguage:          "eng",
		OCRDPI:               300,
		OCRmyPDF:             "ocrmypdf",
		Pdftoppm:             "pdftoppm",
		Tesseract:            "tesseract",
	}
}

func learningConfig() config.LearningConfig {
	return config.LearningConfig{
		ExampleLimit:        50,
		MaxCorpus:           500,
		MinSimilarity:       0.78,
		MaxSynonymsPerField: 8,
	}
}

// harness wires a pipeline over in-memory stores and a local storage root.
type harness struct {
	root     string
	now      time.Time
	docs     *documents.Memory
	events   *events.Memory
	examples *examples.Memory
	runner   *stubRunner
	reader   *stubReader
	rt       *extraction.Runtime
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	logger := discardLogger()

	store, err := storage.NewLocal(root, logger)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	h := &harness{
		root:   root,
		now:    time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC),
		runner: newStubRunner(),
		reader: &stubReader{},
	}
	h.docs = documents.NewMemory(15*time.Minute, func() time.Time { return h.now }, logger)
	h.events = events.NewMemory(logger, nil)
	h.examples = examples.NewMemory(500, func() time.Time { return h.now }, logger)

	h.rt = &extraction.Runtime{
		Queue:      h.docs,
		Storage:    store,
		Events:     h.events,
		Examples:   h.examples,
		Runner:     h.runner,
		Reader:     h.reader,
		Extraction: extractionConfig(),
		Learning:   learningConfig(),
		Logger:     logger,
	}
	return h
}

// upload writes content under key and enqueues a document for it.
func (h *harness) upload(t *testing.T, key string, content []byte, doc documents.Document) documents.Document {
	t.Helper()

	if err := os.WriteFile(filepath.Join(h.root, key), content, 0o644); err != nil {
		t.Fatalf("write %s: %v", key, err)
	}
	doc.StorageKey = key
	if doc.Filename == "" {
		doc.Filename = key
	}
	if doc.ContentType == "" && strings.HasSuffix(key, ".pdf") {
		doc.ContentType = "application/pdf"
	}
	doc.SizeBytes = int64(len(content))
	return h.docs.Insert(doc)
}

// process claims and processes one batch.
func (h *harness) process(t *testing.T) int {
	t.Helper()

	poller := extraction.NewPoller(h.docs, extraction.NewPipeline(h.rt), 10, time.Second, discardLogger())
	n, err := poller.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	return n
}

func (h *harness) find(t *testing.T, doc documents.Document) *documents.Document {
	t.Helper()

	got, err := h.docs.Find(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	return got
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
