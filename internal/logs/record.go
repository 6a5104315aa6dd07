package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/V3L/kometa-yaml-merger/internal/logging"
)

// Record is one decoded diagnostics log line.
type Record struct {
	Time      time.Time
	Level     slog.Level
	Message   string
	RunID     string
	Component string
	EventType string
	Library   string
	Category  string
	Path      string
	// Fields holds every other attribute.
	Fields map[string]any
}

var reservedKeys = []string{
	"ts", "level", "msg", "source",
	logging.FieldRunID, logging.FieldComponent, logging.FieldEventType,
	logging.FieldLibrary, logging.FieldCategory, logging.FieldPath,
}

// ParseRecord decodes a JSON log line. Lines that are not JSON objects
// report false.
func ParseRecord(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] != '{' {
		return Record{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Record{}, false
	}

	rec := Record{
		Message:   stringField(raw, "msg"),
		RunID:     stringField(raw, logging.FieldRunID),
		Component: stringField(raw, logging.FieldComponent),
		EventType: stringField(raw, logging.FieldEventType),
		Library:   stringField(raw, logging.FieldLibrary),
		Category:  stringField(raw, logging.FieldCategory),
		Path:      stringField(raw, logging.FieldPath),
		Level:     ParseLevel(stringField(raw, "level")),
	}
	if ts, err := time.Parse(time.RFC3339, stringField(raw, "ts")); err == nil {
		rec.Time = ts
	}
	for key, value := range raw {
		if slices.Contains(reservedKeys, key) {
			continue
		}
		if rec.Fields == nil {
			rec.Fields = make(map[string]any)
		}
		rec.Fields[key] = value
	}
	return rec, true
}

// ParseLevel maps a level name to its slog level; unknown names are info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Filter selects records. Empty strings match anything; the zero MinLevel
// is info, so debug records need an explicit slog.LevelDebug.
type Filter struct {
	MinLevel  slog.Level
	EventType string
	Library   string
	RunID     string
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec Record) bool {
	if rec.Level < f.MinLevel {
		return false
	}
	if f.EventType != "" && !strings.EqualFold(rec.EventType, f.EventType) {
		return false
	}
	if f.Library != "" && !strings.EqualFold(rec.Library, f.Library) {
		return false
	}
	if f.RunID != "" && rec.RunID != f.RunID {
		return false
	}
	return true
}

// Format renders rec on one line:
// "15:04:05 WARN  [merge] Movies · metadata – fragment empty (fragment_empty) path=a.yml".
func Format(rec Record) string {
	var b strings.Builder
	if !rec.Time.IsZero() {
		b.WriteString(rec.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s", levelName(rec.Level))
	if rec.Component != "" {
		b.WriteString(" [")
		b.WriteString(rec.Component)
		b.WriteByte(']')
	}
	switch {
	case rec.Library != "" && rec.Category != "":
		b.WriteString(" " + rec.Library + " · " + rec.Category)
	case rec.Library != "":
		b.WriteString(" " + rec.Library)
	case rec.Category != "":
		b.WriteString(" " + rec.Category)
	}
	b.WriteString(" – ")
	b.WriteString(rec.Message)
	if rec.EventType != "" {
		b.WriteString(" (" + rec.EventType + ")")
	}
	if rec.Path != "" {
		b.WriteString(" path=" + rec.Path)
	}
	if errText, ok := rec.Fields["error"]; ok {
		fmt.Fprintf(&b, " error=%q", fmt.Sprint(errText))
	}
	return b.String()
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func stringField(raw map[string]any, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
