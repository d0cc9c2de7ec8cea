package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/.config/tally/tally.db", filepath.Join(home, ".config/tally/tally.db")},
		{"~", home},
		{"/tmp/tally.db", "/tmp/tally.db"},
		{"relative/tally.db", "relative/tally.db"},
		{"~other/tally.db", "~other/tally.db"},
		{"postgres://localhost/tally", "postgres://localhost/tally"},
	}

	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Errorf("ExpandPath(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
