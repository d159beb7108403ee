package formatting_test

import (
	"testing"

	"github.com/JaimeStill/loadextract/pkg/formatting"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 0, "0 B"},
		{512, 0, "512 B"},
		{20 * 1024 * 1024, 0, "20 MB"},
		{1536, 1, "1.5 KB"},
		{1536, -1, "2 KB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"2MB", 2 * 1024 * 1024, false},
		{"512 kb", 512 * 1024, false},
		{"100", 100, false},
		{"", 0, true},
		{"12 parsecs", 0, true},
		{"MB", 0, true},
	}

	for _, tt := range tests {
		got, err := formatting.ParseBytes(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseBytes(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBytes(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBytes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
