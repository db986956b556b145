package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/essaylens/internal/errs"
)

var point = map[string]any{
	"type":     "object",
	"required": []any{"x", "y"},
	"properties": map[string]any{
		"x":    map[string]any{"type": "number"},
		"y":    map[string]any{"type": "number", "minimum": 0},
		"tags": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
}

func mustCompile(t *testing.T) any {
	t.Helper()
	s, err := Compile("test/point", point)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return s
}

func TestValidate(t *testing.T) {
	s, err := Compile("test/point", point)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{"valid", `{"x": 1, "y": 2}`, ""},
		{"missing y", `{"x": 1}`, "/"},
		{"negative y", `{"x": 1, "y": -1}`, "/y"},
		{"bad tag", `{"x": 1, "y": 1, "tags": ["a", 3]}`, "/tags/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			err = Validate(s, doc)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *errs.ValidationError, got %T: %v", err, err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
			if strings.HasPrefix(ve.Err.Error(), "at ") {
				t.Errorf("reason still carries the location prefix: %q", ve.Err)
			}
		})
	}
}

func TestCompileCachesByName(t *testing.T) {
	first := mustCompile(t)
	// A different definition under the same name is ignored.
	second, err := Compile("test/point", map[string]any{"type": "string"})
	if err != nil {
		t.Fatal(err)
	}
	if first != any(second) {
		t.Error("Compile did not return the cached schema")
	}
}

func TestCompileRejectsBrokenSchema(t *testing.T) {
	if _, err := Compile("test/broken", map[string]any{"type": 12}); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"x":`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPointer(t *testing.T) {
	if got := Pointer(nil); got != "/" {
		t.Errorf("Pointer(nil) = %q", got)
	}
	if got := Pointer([]string{"words", "3", "duration"}); got != "/words/3/duration" {
		t.Errorf("Pointer = %q", got)
	}
}
