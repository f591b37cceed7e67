package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type staticChecker bool

func (s staticChecker) IsVerbose() bool { return bool(s) }

func TestVerboseGating(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    []string
		notWant []string
	}{
		{
			name:    "quiet",
			verbose: false,
			want:    []string{"WARN [engine] careful", "ERROR [engine] broken"},
			notWant: []string{"DEBUG", "INFO"},
		},
		{
			name:    "verbose",
			verbose: true,
			want:    []string{"DEBUG [engine] details", "INFO [engine] hello 3", "WARN [engine] careful"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New("engine", staticChecker(tt.verbose))
			log.SetOutput(&buf)

			log.Debug("details")
			log.Info("hello %d", 3)
			log.Warn("careful")
			log.Error("broken")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output should not contain %q:\n%s", nw, out)
				}
			}
		})
	}
}

func TestFieldsAndComponents(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithCallback("", func() bool { return true })
	base.SetOutput(&buf)

	base.InfoWithFields("loaded", []Field{Source("cases"), Count(4)})
	base.WithComponent("sources").WarnWithFields("skipped", []Field{Path("/tmp/x.csv"), Error(errors.New("boom"))})

	out := buf.String()
	if !strings.Contains(out, "INFO [main] loaded [source=cases count=4]") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "WARN [sources] skipped [path=/tmp/x.csv error=boom]") {
		t.Errorf("derived logger should share output:\n%s", out)
	}
}

func TestNilCallback(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithCallback("x", nil)
	log.SetOutput(&buf)
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
