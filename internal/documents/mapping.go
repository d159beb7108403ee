package documents

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/drafts"
	"github.com/JaimeStill/loadextract/pkg/repository"
)

const columns = `id, tenant_id, uploaded_by, filename, content_type, size_bytes, storage_key,
	fingerprint, status, extracted_text, extracted_json, extracted_draft, normalized_draft,
	error_message, uploaded_at, updated_at`

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored.
type Filters struct {
	Status   *string    `json:"status,omitempty"`
	TenantID *uuid.UUID `json:"tenantId,omitempty"`
}

// Where renders the filters as a SQL condition with positional arguments
// starting at $1. An empty filter set renders "TRUE".
func (f Filters) Where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.TenantID != nil {
		args = append(args, *f.TenantID)
		conds = append(conds, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}

// Match reports whether d satisfies the filters.
func (f Filters) Match(d *Document) bool {
	if f.Status != nil && d.Status != *f.Status {
		return false
	}
	if f.TenantID != nil && d.TenantID != *f.TenantID {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		s = strings.ToUpper(s)
		f.Status = &s
	}

	if t := values.Get("tenant_id"); t != "" {
		if id, err := uuid.Parse(t); err == nil {
			f.TenantID = &id
		}
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d          Document
		meta       repository.JSON[Metadata]
		extracted  repository.JSON[drafts.Draft]
		normalized repository.JSON[drafts.Draft]
	)
	err := s.Scan(
		&d.ID,
		&d.TenantID,
		&d.UploadedBy,
		&d.Filename,
		&d.ContentType,
		&d.SizeBytes,
		&d.StorageKey,
		&d.Fingerprint,
		&d.Status,
		&d.ExtractedText,
		&meta,
		&extracted,
		&normalized,
		&d.ErrorMessage,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	d.ExtractedJSON = meta.Val
	d.ExtractedDraft = extracted.Val
	d.NormalizedDraft = normalized.Val
	return d, err
}
