package typing

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/schema"
)

// LogSchema is the JSON Schema every incoming typing log must satisfy.
// "words" may be omitted (an empty session); the session bounds and the
// total duration are mandatory.
var LogSchema = map[string]any{
	"type":     "object",
	"required": []any{"session_start_time", "session_end_time", "duration_seconds"},
	"properties": map[string]any{
		"words": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"word", "duration", "backspaces"},
				"properties": map[string]any{
					"word":         map[string]any{"type": "string"},
					"duration":     map[string]any{"type": "number", "minimum": 0},
					"pause_before": map[string]any{"type": []any{"number", "null"}, "minimum": 0},
					"backspaces":   map[string]any{"type": "integer", "minimum": 0},
				},
			},
		},
		"session_start_time": map[string]any{"type": []any{"string", "number"}},
		"session_end_time":   map[string]any{"type": []any{"string", "number"}},
		"duration_seconds":   map[string]any{"type": "number", "minimum": 0},
	},
}

// Decode parses and validates a raw typing log. Structural problems are
// reported as *errs.ValidationError.
func Decode(data []byte) (*Log, error) {
	doc, err := schema.Parse(data)
	if err != nil {
		return nil, &errs.ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, &errs.ValidationError{Err: err}
	}
	if log.Words == nil {
		log.Words = []WordEvent{}
	}
	return &log, nil
}

// Validate checks an already-parsed JSON document against LogSchema.
func Validate(doc any) error {
	s, err := schema.Compile("typing-log", LogSchema)
	if err != nil {
		return err
	}
	return schema.Validate(s, doc)
}

// Check validates a Log built in-process (not decoded from JSON) against
// the same invariants LogSchema enforces.
func (l *Log) Check() error {
	if l.DurationSeconds < 0 {
		return &errs.ValidationError{Field: "/duration_seconds", Err: fmt.Errorf("must be >= 0, got %v", l.DurationSeconds)}
	}
	for i, w := range l.Words {
		switch {
		case w.Duration < 0:
			return &errs.ValidationError{Field: fmt.Sprintf("/words/%d/duration", i), Err: fmt.Errorf("must be >= 0, got %v", w.Duration)}
		case w.Backspaces < 0:
			return &errs.ValidationError{Field: fmt.Sprintf("/words/%d/backspaces", i), Err: fmt.Errorf("must be >= 0, got %d", w.Backspaces)}
		case w.PauseBefore != nil && *w.PauseBefore < 0:
			return &errs.ValidationError{Field: fmt.Sprintf("/words/%d/pause_before", i), Err: fmt.Errorf("must be >= 0, got %v", *w.PauseBefore)}
		}
	}
	return nil
}
