package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
)

// withStdout captures everything f writes to os.Stdout.
func withStdout(t *testing.T, f func()) []byte {
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
	out, _ := io.ReadAll(r)
	_ = r.Close()
	return out
}

func TestNew_ErrorEventCarriesServiceAndStack(t *testing.T) {
	out := withStdout(t, func() {
		log := New("cardkeep-test")
		log.Error().Stack().Err(errors.New("disk full")).Msg("write failed")
	})

	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	if len(lines) == 0 {
		t.Fatalf("no log output")
	}
	var event map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &event); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, out)
	}

	if event["service"] != "cardkeep-test" {
		t.Errorf("service field: got %v", event["service"])
	}
	if event["level"] != "error" {
		t.Errorf("level field: got %v", event["level"])
	}
	if event["message"] != "write failed" {
		t.Errorf("message field: got %v", event["message"])
	}
	// a plain errors.New value still gets a stack attached by the marshaler
	if _, ok := event["stack"]; !ok {
		t.Errorf("stack field missing: %s", lines[len(lines)-1])
	}
}

func TestNew_InfoEventHasTimestamp(t *testing.T) {
	out := withStdout(t, func() {
		log := New("cardkeep-test")
		log.Info().Msg("up")
	})

	var event map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(out), &event); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, out)
	}
	if _, ok := event["time"]; !ok {
		t.Errorf("time field missing: %s", out)
	}
}
