package extraction

import (
	"errors"
	"fmt"
)

// Fatal resource-limit errors. A document hitting one of these ends in FAILED.
var (
	ErrFileTooLarge = errors.New("file too large")
	ErrTooManyPages = errors.New("too many pages")
)

// ErrOCRUnavailable is reported when no OCR tool is installed on the host.
var ErrOCRUnavailable = errors.New("OCR tools not installed (install ocrmypdf, or pdftoppm and tesseract)")

// ToolError describes a failed external tool invocation.
type ToolError struct {
	Tool     string
	TimedOut bool
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s timed out", e.Tool)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
