package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/essaylens/internal/errs"
	"github.com/abhisek/essaylens/internal/schema"
)

// finish turns the raw text a provider produced into a Response. Failures
// come back as llm ServiceErrors wrapping *ErrInvalidResponse.
func finish(provider string, req Request, text, model, stop string, u Usage) (*Response, error) {
	resp := &Response{Usage: u, Model: model, StopReason: stop}
	if req.Schema == nil {
		raw, err := json.Marshal(text)
		if err != nil {
			return nil, providerError(provider, 0, err)
		}
		resp.Content = raw
		return resp, nil
	}

	content, err := structured(req.Schema, text)
	if err != nil {
		var ir *ErrInvalidResponse
		if errors.As(err, &ir) {
			ir.Truncated = stop == StopMaxTokens
		}
		return nil, providerError(provider, 0, err)
	}
	resp.Content = content
	return resp, nil
}

// structured parses text as JSON and validates it against s.
func structured(s *Schema, text string) (json.RawMessage, error) {
	body := stripFences(text)
	if body == "" {
		return nil, &ErrInvalidResponse{Err: errors.New("empty response")}
	}
	doc, err := schema.Parse([]byte(body))
	if err != nil {
		return nil, &ErrInvalidResponse{Content: json.RawMessage(body), Err: fmt.Errorf("not JSON: %w", err)}
	}
	compiled, err := schema.Compile("llm/"+s.Name, s.Definition)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(compiled, doc); err != nil {
		ir := &ErrInvalidResponse{Content: json.RawMessage(body), Err: err}
		var ve *errs.ValidationError
		if errors.As(err, &ve) {
			ir.Field, ir.Err = ve.Field, ve.Err
		}
		return nil, ir
	}
	return json.RawMessage(body), nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add even in JSON mode.
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		// Drop the info string ("json").
		t = t[nl+1:]
	} else {
		t = ""
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
