// Package typing models the client-captured keystroke log and derives the
// timing and burst metrics used by the engagement pipeline.
package typing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WordEvent is one typed word in typing order. PauseBefore is nil when the
// capture layer recorded no pause (typically the first word).
type WordEvent struct {
	Word        string   `json:"word"`
	Duration    float64  `json:"duration"`
	PauseBefore *float64 `json:"pause_before"`
	Backspaces  int      `json:"backspaces"`
}

// Pause returns the pause before the word, treating an absent pause as 0.
func (w WordEvent) Pause() float64 {
	if w.PauseBefore == nil {
		return 0
	}
	return *w.PauseBefore
}

// Log is a full typing session as sent by the capture client. It is
// consumed read-only by the pipeline.
type Log struct {
	Words            []WordEvent `json:"words"`
	SessionStartTime Timestamp   `json:"session_start_time"`
	SessionEndTime   Timestamp   `json:"session_end_time"`
	DurationSeconds  float64     `json:"duration_seconds"`
}

// Text reconstructs the essay text by joining every word with a single
// space, in typing order.
func (l *Log) Text() string {
	words := make([]string, len(l.Words))
	for i, w := range l.Words {
		words[i] = w.Word
	}
	return strings.Join(words, " ")
}

// Timestamp accepts either an RFC 3339 string or epoch milliseconds
// (JavaScript Date.now()) and always marshals as RFC 3339.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("timestamp is null")
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("timestamp must be RFC 3339 or epoch milliseconds: %w", err)
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}
