// Package schema compiles JSON Schema definitions written as Go literals
// and reports validation failures as *errs.ValidationError.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/essaylens/internal/errs"
)

var compiled sync.Map // name -> *jsonschema.Schema

// Compile compiles def once per name. def is any Go value that marshals
// to a JSON Schema document; later calls with the same name return the
// cached result and ignore def.
func Compile(name string, def any) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(name); ok {
		return s.(*jsonschema.Schema), nil
	}

	// The compiler wants a value shaped like decoded JSON.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", name, err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := "schema://" + name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}

	actual, _ := compiled.LoadOrStore(name, s)
	return actual.(*jsonschema.Schema), nil
}

// Parse decodes JSON the way the validator expects (numbers as json.Number).
func Parse(data []byte) (any, error) {
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// Validate checks doc against s. A failure is reported as an
// *errs.ValidationError naming the deepest failing location.
func Validate(s *jsonschema.Schema, doc any) error {
	err := s.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &errs.ValidationError{Err: err}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &errs.ValidationError{Field: Pointer(ve.InstanceLocation), Err: errors.New(reason(ve))}
}

// Pointer renders an instance location as a JSON pointer.
func Pointer(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

// reason drops the "at '/path': " prefix the library puts on leaf errors.
func reason(ve *jsonschema.ValidationError) string {
	msg := ve.Error()
	if strings.HasPrefix(msg, "at ") {
		if i := strings.Index(msg, "': "); i >= 0 {
			return msg[i+3:]
		}
	}
	return msg
}
