// Package httpx holds the small JSON-over-HTTP client shared by the
// self-hosted collaborator backends (TEI, LanguageTool, remote classifier).
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abhisek/essaylens/internal/errs"
)

// DefaultTimeout bounds a single collaborator request when the caller
// does not supply its own client.
const DefaultTimeout = 45 * time.Second

// maxErrorBody caps how much of a failing response body ends up in an error.
const maxErrorBody = 512

// Client posts requests to one collaborator service and maps every failure
// to an *errs.ServiceError tagged with Service.
type Client struct {
	HTTP    *http.Client
	Service string
}

// New returns a Client for service. A nil hc gets a client with
// DefaultTimeout.
func New(service string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{HTTP: hc, Service: service}
}

// PostJSON sends in as a JSON body to endpoint and decodes the response
// into out. op names the operation in errors, e.g. "tei /embed".
func (c *Client) PostJSON(ctx context.Context, endpoint, op string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return errs.Service(c.Service, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

// PostForm sends vals as an urlencoded form to endpoint and decodes the
// JSON response into out.
func (c *Client) PostForm(ctx context.Context, endpoint, op string, vals url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(vals.Encode()))
	if err != nil {
		return errs.Service(c.Service, op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errs.Service(c.Service, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.ServiceError{Service: c.Service, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errs.ServiceError{Service: c.Service, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", snippet(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.Malformed(c.Service, op, "decode response: %v", err)
	}
	return nil
}

// Join appends path to base, tolerating a trailing slash on base.
func Join(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response"
	}
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
