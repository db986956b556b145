package engagement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/typing"
)

// Submission is one essay as sent by the capture client.
type Submission struct {
	Log         *typing.Log `json:"typing_data"`
	LectureText string      `json:"lecture_text"`
	EssayText   string      `json:"essay_text"`
}

// DecodeSubmission parses a submission document, validating typing_data
// against typing.LogSchema.
func DecodeSubmission(data []byte) (*Submission, error) {
	var raw struct {
		TypingData  json.RawMessage `json:"typing_data"`
		LectureText string          `json:"lecture_text"`
		EssayText   string          `json:"essay_text"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, &errs.ValidationError{Err: fmt.Errorf("invalid submission: %w", err)}
	}
	if len(raw.TypingData) == 0 || string(raw.TypingData) == "null" {
		return nil, &errs.ValidationError{Field: "/typing_data", Err: fmt.Errorf("missing property 'typing_data'")}
	}

	log, err := typing.Decode(raw.TypingData)
	if err != nil {
		var ve *errs.ValidationError
		if errors.As(err, &ve) {
			ve.Field = "/typing_data" + strings.TrimSuffix(ve.Field, "/")
		}
		return nil, err
	}
	return &Submission{Log: log, LectureText: raw.LectureText, EssayText: raw.EssayText}, nil
}
