package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/loadextract/internal/config"
	"github.com/JaimeStill/loadextract/internal/documents"
	"github.com/JaimeStill/loadextract/internal/drafts"
	"github.com/JaimeStill/loadextract/internal/events"
	"github.com/JaimeStill/loadextract/internal/examples"
	"github.com/JaimeStill/loadextract/pkg/storage"
)

// errorMessageLimit bounds the errorMessage persisted on a failed document.
const errorMessageLimit = 500

// Runtime bundles the dependencies the pipeline requires. It is constructed
// by the worker from infrastructure and domain systems.
type Runtime struct {
	Queue      documents.Queue
	Storage    storage.System
	Events     events.Sink
	Examples   examples.Source
	Runner     Runner
	Reader     PDFReader
	Extraction config.ExtractionConfig
	Learning   config.LearningConfig
	Logger     *slog.Logger
}

// Pipeline turns one claimed document into a draft and a terminal status.
type Pipeline struct {
	queue    documents.Queue
	sink     events.Sink
	examples examples.Source
	resolver *Resolver
	text     *TextExtractor
	ocr      *OCR
	matcher  *Matcher
	learning config.LearningConfig
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline from rt.
func NewPipeline(rt *Runtime) *Pipeline {
	cfg := rt.Extraction
	return &Pipeline{
		queue:    rt.Queue,
		sink:     rt.Events,
		examples: rt.Examples,
		resolver: NewResolver(rt.Storage, cfg.MaxFileBytes()),
		text:     NewTextExtractor(rt.Reader, cfg.ScannedTextThreshold, cfg.MaxPages),
		ocr:      NewOCR(rt.Runner, rt.Reader, cfg, rt.Logger),
		matcher:  NewMatcher(rt.Learning.MinSimilarity),
		learning: rt.Learning,
		logger:   rt.Logger.With("system", "pipeline"),
	}
}

// Process extracts a claimed document and writes its result. Document-level
// failures, panics included, are recorded on the document and not returned.
// The returned error reports only a failure to persist the outcome or a
// cancelled context, which leaves the claim to go stale and be reclaimed.
func (p *Pipeline) Process(ctx context.Context, claim *documents.Claim) (err error) {
	workDir, cleanup, err := newWorkDir(claim.ID.String())
	if err != nil {
		r := newRun(claim, "", p.sink, p.logger)
		return p.fail(ctx, r, err)
	}
	defer cleanup()

	r := newRun(claim, workDir, p.sink, p.logger)

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic during extraction", "panic", rec)
			err = p.fail(ctx, r, fmt.Errorf("unexpected error: %v", rec))
		}
	}()

	if claim.Reclaimed {
		r.emit(ctx, events.ExtractRetry, "Reclaimed stale extraction")
	}
	r.emit(ctx, events.ExtractStart, "Extraction started")

	result, err := p.extract(ctx, r)
	if err != nil {
		if ctx.Err() != nil {
			r.logger.Warn("extraction interrupted, claim left to go stale", "error", err)
			return ctx.Err()
		}
		return p.fail(ctx, r, err)
	}

	return p.complete(ctx, r, result)
}

func (p *Pipeline) extract(ctx context.Context, r *run) (documents.Result, error) {
	claim := r.claim

	path, _, err := p.resolver.Resolve(ctx, claim.StorageKey, r.workDir)
	if err != nil {
		return documents.Result{}, err
	}

	if claim.Fingerprint != nil && *claim.Fingerprint != "" {
		r.fingerprint = *claim.Fingerprint
	} else if r.fingerprint, err = Fingerprint(path); err != nil {
		return documents.Result{}, fmt.Errorf("fingerprint: %w", err)
	}

	native, err := p.text.Extract(path, claim.IsPDF())
	if err != nil {
		return documents.Result{}, err
	}
	r.text = native.Text
	r.meta.PageCount = native.PageCount
	r.meta.Scanned = native.Outcome == Scanned

	if r.meta.Scanned {
		p.runOCR(ctx, r, path)
	}

	if broker := BrokerName(r.text); broker != "" {
		r.meta.BrokerName = &broker
	}

	if !p.learning.Disabled {
		r.examples, err = p.examples.Recent(ctx, claim.TenantID, p.learning.ExampleLimit)
		if err != nil {
			return documents.Result{}, fmt.Errorf("load learning examples: %w", err)
		}
	}

	draft, reused := p.draft(r)
	normalized := drafts.Normalize(draft)

	readiness := Classify(normalized, Signals{TemplateReused: reused, OCRFailed: r.ocrErr != nil})
	r.meta.Confidence = documents.Confidence{
		Score:          readiness.Score,
		ReviewRequired: readiness.ReviewRequired,
		Flags:          readiness.Flags,
	}

	result := documents.Result{
		Status:          documents.StatusReadyToCreate,
		Fingerprint:     &r.fingerprint,
		ExtractedText:   r.text,
		Metadata:        &r.meta,
		ExtractedDraft:  &draft,
		NormalizedDraft: &normalized,
	}
	if !readiness.Ready {
		result.Status = documents.StatusNeedsReview
		msg := reviewMessage(readiness, r.ocrErr)
		result.ErrorMessage = &msg
	}
	return result, nil
}

func (p *Pipeline) runOCR(ctx context.Context, r *run, path string) {
	r.emit(ctx, events.ExtractOCRStart, "OCR started")
	r.meta.OCRUsed = true

	res := p.ocr.Run(ctx, path, r.claim.IsPDF(), r.workDir)
	if res.Tool != "" {
		r.meta.OCRTool = &res.Tool
	}

	if res.Failed() {
		r.ocrErr = res.Err
		msg := res.Err.Error()
		r.meta.OCRError = &msg
		r.logger.Warn("ocr failed", "tool", res.Tool, "error", res.Err)
		r.emit(ctx, events.ExtractOCRFailed, "OCR failed: "+msg)
		return
	}

	r.text = res.Text
	r.emit(ctx, events.ExtractOCRDone, "OCR completed with "+res.Tool)
}

// draft reuses a matched corrected draft or runs the field engine with
// synonyms learned from the example snapshot.
func (p *Pipeline) draft(r *run) (drafts.Draft, bool) {
	if m, ok := p.matcher.Match(r.examples, r.fingerprint, r.text); ok {
		reason := m.Reason
		similarity := m.Similarity
		exampleID := m.Example.ID
		r.meta.Learning = documents.Learning{
			Matched:    true,
			Reason:     &reason,
			Similarity: &similarity,
			ExampleID:  &exampleID,
		}
		r.logger.Info("reusing corrected draft", "reason", reason, "similarity", similarity, "example_id", exampleID)
		return m.Example.CorrectedDraft.Clone(), true
	}

	synonyms := BuildSynonyms(r.examples, p.learning.MaxSynonymsPerField)
	r.meta.Learning = documents.Learning{Synonyms: synonyms.Count()}

	return NewFieldExtractor(r.text, synonyms).Extract(r.claim.ID), false
}

func (p *Pipeline) complete(ctx context.Context, r *run, result documents.Result) error {
	if err := p.queue.Complete(ctx, r.claim, result); err != nil {
		if errors.Is(err, documents.ErrNotClaimed) {
			r.logger.Warn("claim lost before completion, result discarded")
			return nil
		}
		return fmt.Errorf("complete %s: %w", r.claim.ID, err)
	}

	if result.Status == documents.StatusReadyToCreate {
		r.emit(ctx, events.ExtractReady, "Draft ready to create")
	} else {
		r.emit(ctx, events.ExtractReview, *result.ErrorMessage)
	}

	r.logger.Info("extraction complete",
		"status", result.Status,
		"scanned", r.meta.Scanned,
		"ocr_used", r.meta.OCRUsed,
		"learning_matched", r.meta.Learning.Matched,
		"confidence", r.meta.Confidence.Score,
	)
	return nil
}

func (p *Pipeline) fail(ctx context.Context, r *run, cause error) error {
	msg := clip(cause.Error(), errorMessageLimit)
	r.logger.Error("extraction failed", "error", cause)

	if err := p.queue.Fail(ctx, r.claim, msg); err != nil {
		if errors.Is(err, documents.ErrNotClaimed) {
			r.logger.Warn("claim lost before failure was recorded")
			return nil
		}
		return fmt.Errorf("fail %s: %w", r.claim.ID, err)
	}

	r.emit(ctx, events.ExtractFailed, msg)
	return nil
}

func reviewMessage(r Readiness, ocrErr error) string {
	parts := make([]string, 0, 2)
	if ocrErr != nil {
		parts = append(parts, ocrErr.Error())
	}
	if msg := r.Message(); msg != "" {
		parts = append(parts, msg)
	}
	return clip(strings.Join(parts, "; "), errorMessageLimit)
}
