package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON adapts a Go value to a jsonb column. A nil Val is stored as SQL NULL
// and a NULL column scans to a nil Val.
type JSON[T any] struct {
	Val *T
}

// NewJSON wraps v for use as a query argument.
func NewJSON[T any](v *T) JSON[T] {
	return JSON[T]{Val: v}
}

// Value implements driver.Valuer.
func (j JSON[T]) Value() (driver.Value, error) {
	if j.Val == nil {
		return nil, nil
	}
	b, err := json.Marshal(j.Val)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (j *JSON[T]) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		j.Val = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan json column: unsupported type %T", src)
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	j.Val = &out
	return nil
}
