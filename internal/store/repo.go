package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is the created_at column format. It is fixed width and always
// UTC so that text comparison in SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // created_at >= From
	To      time.Time // created_at <= To
	Student string    // evaluations only; exact match
	Session string    // evaluations only; exact match
	Service string    // service calls only; exact match
	Purpose string    // service calls only; exact match
}

// Evaluation is one stored pipeline run. Report and Submission hold the
// JSON documents exactly as produced and received.
type Evaluation struct {
	ID              string
	Sequence        int64
	CreatedAt       time.Time
	Student         string
	Session         string
	EngagementScore int
	TypingStyle     string
	SimilarityScore float64
	Submission      json.RawMessage
	Report          json.RawMessage
}

// EvaluationRepo manages stored evaluations.
type EvaluationRepo interface {
	// Save stores a new evaluation. ID and CreatedAt are assigned when empty;
	// Sequence is always assigned.
	Save(ctx context.Context, ev *Evaluation) error

	// Get returns the evaluation with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Evaluation, error)

	// List returns evaluations newest first.
	List(ctx context.Context, opts QueryOpts) ([]Evaluation, error)
}

// ServiceCall captures a single collaborator call.
type ServiceCall struct {
	ID           int64
	Sequence     int64
	CreatedAt    time.Time
	Service      string // embedding, similarity, grammar, classifier, llm
	Backend      string // tei, openai, languagetool, claude-haiku-4-5, ...
	Purpose      string
	Items        int // texts embedded, matches returned, ...
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// ServiceUsage aggregates calls for one service/backend pair.
type ServiceUsage struct {
	Service      string
	Backend      string
	Calls        int
	Failures     int
	AvgLatencyMs float64
	InputTokens  int
	OutputTokens int
}

// CallRepo provides append and query access to the service call journal.
type CallRepo interface {
	// AppendServiceCall records a collaborator call.
	AppendServiceCall(ctx context.Context, call ServiceCall) error

	// QueryServiceCalls returns recorded calls newest first.
	QueryServiceCalls(ctx context.Context, opts QueryOpts) ([]ServiceCall, error)

	// UsageByService aggregates the journal per service and backend.
	UsageByService(ctx context.Context) ([]ServiceUsage, error)
}
