package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/loadextract/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("claim: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"foreign key passthrough", fk, fk},
		{"other passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type payload struct {
	Score float64  `json:"score"`
	Flags []string `json:"flags"`
}

func TestJSONValueAndScan(t *testing.T) {
	in := &payload{Score: 0.85, Flags: []string{"TEMPLATE_REUSED"}}

	v, err := repository.NewJSON(in).Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var out repository.JSON[payload]
	if err := out.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if out.Val == nil || out.Val.Score != 0.85 || out.Val.Flags[0] != "TEMPLATE_REUSED" {
		t.Errorf("scanned value = %+v", out.Val)
	}
}

func TestJSONNull(t *testing.T) {
	v, err := repository.NewJSON[payload](nil).Value()
	if err != nil || v != nil {
		t.Errorf("nil Value() = %v, %v; want nil, nil", v, err)
	}

	out := repository.JSON[payload]{Val: &payload{}}
	if err := out.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if out.Val != nil {
		t.Error("Scan(nil) should reset Val")
	}
}

func TestJSONScanRejectsUnsupported(t *testing.T) {
	var out repository.JSON[payload]
	if err := out.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
