package extraction

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/loadextract/internal/documents"
	"github.com/JaimeStill/loadextract/internal/events"
	"github.com/JaimeStill/loadextract/internal/examples"
)

// run carries the state of processing one claimed document. It is created
// per document and never shared, so nothing learned for one document leaks
// into the next.
type run struct {
	claim   *documents.Claim
	workDir string
	logger  *slog.Logger
	sink    events.Sink

	fingerprint string
	text        string
	meta        documents.Metadata
	examples    []examples.Example
	ocrErr      error
}

func newRun(claim *documents.Claim, workDir string, sink events.Sink, logger *slog.Logger) *run {
	return &run{
		claim:   claim,
		workDir: workDir,
		sink:    sink,
		logger: logger.With(
			"document_id", claim.ID,
			"tenant_id", claim.TenantID,
		),
	}
}

// emit records a stage transition. Sink failures are logged and never fail
// the document.
func (r *run) emit(ctx context.Context, t events.Type, message string) {
	err := r.sink.Record(ctx, events.Event{
		DocumentID: r.claim.ID,
		TenantID:   r.claim.TenantID,
		ActorID:    r.claim.UploadedBy,
		Type:       t,
		Message:    message,
	})
	if err != nil {
		r.logger.Warn("record event failed", "type", t, "error", err)
	}
}
