package drafts

import "errors"

// ErrInvalidDraft indicates a draft that does not satisfy the draft schema.
var ErrInvalidDraft = errors.New("invalid draft")
