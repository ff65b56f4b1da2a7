package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"", false, true},
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"ERROR", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(&buf, tt.level)
			if err != nil {
				t.Fatal(err)
			}
			l.Debug("dbg-line")
			l.Info("info-line")

			out := buf.String()
			if got := strings.Contains(out, "dbg-line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info-line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if tt.wantInfo && !strings.Contains(out, "balls") {
				t.Errorf("missing prefix in %q", out)
			}
		})
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}
