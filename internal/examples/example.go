// Package examples stores human-corrected drafts that the extraction
// pipeline reuses as templates and mines for label synonyms.
package examples

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/drafts"
)

// Example is a corrected draft paired with the text it was extracted from.
type Example struct {
	ID             uuid.UUID    `json:"id"`
	TenantID       uuid.UUID    `json:"tenantId"`
	DocumentID     *uuid.UUID   `json:"documentId"`
	BrokerName     *string      `json:"brokerName"`
	DocFingerprint *string      `json:"docFingerprint"`
	ExtractedText  string       `json:"extractedText"`
	CorrectedDraft drafts.Draft `json:"correctedDraft"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// CreateCommand carries a corrected draft submitted after human review.
// CorrectedDraft is raw JSON so it can be validated against the draft schema.
type CreateCommand struct {
	TenantID       uuid.UUID       `json:"tenantId"`
	DocumentID     *uuid.UUID      `json:"documentId"`
	BrokerName     *string         `json:"brokerName"`
	DocFingerprint *string         `json:"docFingerprint"`
	ExtractedText  string          `json:"extractedText"`
	CorrectedDraft json.RawMessage `json:"correctedDraft"`
}

// build validates cmd and produces an Example with a new id.
func (cmd CreateCommand) build(now time.Time) (Example, error) {
	if cmd.TenantID == uuid.Nil {
		return Example{}, ErrMissingTenant
	}
	draft, err := drafts.Parse(cmd.CorrectedDraft)
	if err != nil {
		return Example{}, err
	}
	return Example{
		ID:             uuid.New(),
		TenantID:       cmd.TenantID,
		DocumentID:     cmd.DocumentID,
		BrokerName:     cmd.BrokerName,
		DocFingerprint: cmd.DocFingerprint,
		ExtractedText:  cmd.ExtractedText,
		CorrectedDraft: draft,
		CreatedAt:      now,
	}, nil
}
