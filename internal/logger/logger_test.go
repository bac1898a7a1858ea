package logger

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs f with os.Stdout redirected to a pipe and returns the output.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()

	_ = w.Close()
	b, _ := io.ReadAll(r)
	_ = r.Close()
	return string(b)
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

func TestNew_TagsServiceName(t *testing.T) {
	out := captureStdout(t, func() {
		log := New("notes-service")
		log.Info().Msg("hello")
	})

	var ev map[string]interface{}
	if err := json.Unmarshal([]byte(lastNonEmptyLine(out)), &ev); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, out)
	}
	if ev["service"] != "notes-service" {
		t.Fatalf("service field missing: %v", ev)
	}
	if ev["message"] != "hello" {
		t.Fatalf("message field missing: %v", ev)
	}
}

func TestNew_StackOnStdError(t *testing.T) {
	out := captureStdout(t, func() {
		log := New("notes-service")
		log.Error().Stack().Err(errors.New("boom")).Msg("failed")
	})

	var ev map[string]interface{}
	if err := json.Unmarshal([]byte(lastNonEmptyLine(out)), &ev); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, out)
	}
	if _, ok := ev["stack"]; !ok {
		t.Fatalf("expected stack field on error event: %v", ev)
	}
}
