package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	h := newFanoutHandler(nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewFanoutHandlerFiltersNil(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)

	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerHandleRespectsLevel(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(newFanoutHandler(h1, h2))
	logger.Info("info message")

	if buf1.Len() == 0 {
		t.Error("expected output in buf1 (info level)")
	}
	if buf2.Len() != 0 {
		t.Error("expected no output in buf2 (warn level filter)")
	}
	if !newFanoutHandler(h1, h2).Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected fanout to be enabled for info")
	}
}

func TestFanoutHandlerWithAttrsReachesEveryHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	slog.New(h.WithAttrs([]slog.Attr{slog.String("key", "value")})).Info("test")

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !strings.Contains(buf.String(), `"key":"value"`) {
			t.Errorf("handler %d missing attribute: %s", i, buf.String())
		}
	}
}

func TestRunIDHandlerStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	h := newRunIDHandler(slog.NewJSONHandler(&buf, nil), "run-123")

	slog.New(h).With("component", "merge").Info("hello")

	if !strings.Contains(buf.String(), `"run_id":"run-123"`) {
		t.Fatalf("expected run id in output, got %s", buf.String())
	}
}

func TestPrettyHandlerHeaderSubject(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("fragment loaded",
		slog.String(FieldComponent, "merge"),
		slog.String(FieldLibrary, "Movies"),
		slog.String(FieldCategory, "metadata"),
		slog.String(FieldPath, "Movies/metadata/a.yml"),
		slog.String(FieldEventType, "fragment_loaded"),
	)

	out := buf.String()
	if !strings.Contains(out, "INFO [merge] Movies · metadata – fragment loaded") {
		t.Fatalf("unexpected header: %q", out)
	}
	eventIdx := strings.Index(out, "- event_type: fragment_loaded")
	pathIdx := strings.Index(out, "- path: Movies/metadata/a.yml")
	if eventIdx < 0 || pathIdx < 0 || eventIdx > pathIdx {
		t.Fatalf("expected event_type before path, got %q", out)
	}
	if strings.Contains(out, "- library:") {
		t.Fatalf("header keys should not repeat as fields: %q", out)
	}
}

func TestPrettyHandlerQuotesAwkwardValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, new(slog.LevelVar), false))

	logger.Warn("bad", slog.String("empty", ""), slog.Any("error", errors.New("line\nbreak")))

	out := buf.String()
	if !strings.Contains(out, `- empty: ""`) {
		t.Fatalf("expected quoted empty value, got %q", out)
	}
	if !strings.Contains(out, `- error: "line\nbreak"`) {
		t.Fatalf("expected quoted error value, got %q", out)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
}

func TestComposeSubject(t *testing.T) {
	cases := map[[2]string]string{
		{"Movies", "metadata"}: "Movies · metadata",
		{"Movies", ""}:         "Movies",
		{"", "overlays"}:       "overlays",
		{"", ""}:               "",
	}
	for in, want := range cases {
		if got := composeSubject(in[0], in[1]); got != want {
			t.Errorf("composeSubject(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}
