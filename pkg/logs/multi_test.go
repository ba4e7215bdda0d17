package logs

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandlerFanOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}}

	slog.New(h).Info("booking confirmed", slog.String("id", "abc"))

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		if !strings.Contains(buf.String(), "booking confirmed") {
			t.Errorf("%s sink missing record: %q", name, buf.String())
		}
		if !strings.Contains(buf.String(), `"id":"abc"`) {
			t.Errorf("%s sink missing attr: %q", name, buf.String())
		}
	}
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var verbose, quiet bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
	}}

	if !h.Enabled(t.Context(), slog.LevelDebug) {
		t.Fatal("handler should be enabled while any sink admits the level")
	}

	slog.New(h).Debug("slot scan")

	if !strings.Contains(verbose.String(), "slot scan") {
		t.Errorf("debug sink missing record: %q", verbose.String())
	}
	if quiet.Len() != 0 {
		t.Errorf("error-level sink should stay empty, got %q", quiet.String())
	}
}

func TestMultiHandlerWithAttrsAndGroup(t *testing.T) {
	var out bytes.Buffer
	base := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}}

	h := base.WithAttrs([]slog.Attr{slog.String("service", "scheduler")}).WithGroup("req")
	slog.New(h).Info("listed", slog.Int("count", 3))

	got := out.String()
	if !strings.Contains(got, `"service":"scheduler"`) {
		t.Errorf("missing inherited attr: %q", got)
	}
	if !strings.Contains(got, `"req":{"count":3}`) {
		t.Errorf("missing grouped attr: %q", got)
	}
}
