// Package documents implements the document domain for the extraction worker.
// It provides the Document model, the extraction status machine, and the
// claim queue that hands documents to exactly one worker at a time.
package documents

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/drafts"
)

// Document lifecycle statuses.
const (
	StatusUploaded      = "UPLOADED"
	StatusExtracting    = "EXTRACTING"
	StatusReadyToCreate = "READY_TO_CREATE"
	StatusNeedsReview   = "NEEDS_REVIEW"
	StatusFailed        = "FAILED"
)

// Document is one uploaded load confirmation file and its extraction output.
type Document struct {
	ID              uuid.UUID     `json:"id"`
	TenantID        uuid.UUID     `json:"tenantId"`
	UploadedBy      uuid.UUID     `json:"uploadedBy"`
	Filename        string        `json:"filename"`
	ContentType     string        `json:"contentType"`
	SizeBytes       int64         `json:"sizeBytes"`
	StorageKey      string        `json:"storageKey"`
	Fingerprint     *string       `json:"fingerprint"`
	Status          string        `json:"status"`
	ExtractedText   *string       `json:"extractedText,omitempty"`
	ExtractedJSON   *Metadata     `json:"extractedJson"`
	ExtractedDraft  *drafts.Draft `json:"extractedDraft"`
	NormalizedDraft *drafts.Draft `json:"normalizedDraft"`
	ErrorMessage    *string       `json:"errorMessage"`
	UploadedAt      time.Time     `json:"uploadedAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// IsPDF reports whether the document should be handled as a PDF rather than an image.
func (d *Document) IsPDF() bool {
	if d.ContentType == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(d.Filename), ".pdf")
}

// Metadata is the diagnostic record stored in extractedJson.
type Metadata struct {
	Scanned    bool       `json:"scanned"`
	PageCount  int        `json:"pageCount"`
	OCRUsed    bool       `json:"ocrUsed"`
	OCRTool    *string    `json:"ocrTool"`
	OCRError   *string    `json:"ocrError"`
	BrokerName *string    `json:"brokerName"`
	Confidence Confidence `json:"confidence"`
	Learning   Learning   `json:"learning"`
}

// Confidence is the informational readiness estimate for a draft.
type Confidence struct {
	Score          float64  `json:"score"`
	ReviewRequired bool     `json:"reviewRequired"`
	Flags          []string `json:"flags"`
}

// Learning describes whether a prior corrected draft was reused.
type Learning struct {
	Matched    bool       `json:"matched"`
	Reason     *string    `json:"reason"`
	Similarity *float64   `json:"similarity"`
	ExampleID  *uuid.UUID `json:"exampleId,omitempty"`
	Synonyms   int        `json:"synonyms"`
}

// Claim is a document held exclusively in EXTRACTING by the caller.
// Reclaimed is true when the document was taken over from a stale claim.
type Claim struct {
	Document
	Reclaimed bool
}

// Result is the terminal outcome written back onto a claimed document.
type Result struct {
	Status          string
	Fingerprint     *string
	ExtractedText   string
	Metadata        *Metadata
	ExtractedDraft  *drafts.Draft
	NormalizedDraft *drafts.Draft
	ErrorMessage    *string
}
