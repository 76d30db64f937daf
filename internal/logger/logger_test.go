package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, "debug", "json"), "gate")
	log.Debug().Str("path", "/dashboard").Msg("redirect")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]string{
		"service":   ServiceName,
		"component": "gate",
		"path":      "/dashboard",
		"level":     "debug",
		"message":   "redirect",
	} {
		if got := entry[key]; got != want {
			t.Errorf("%s = %v, want %q", key, got, want)
		}
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "loud", "json")
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Fatalf("global level = %v, want info", got)
	}
}
