package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// callRepo implements CallRepo with raw SQL and the global sequence counter.
type callRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *callRepo) AppendServiceCall(ctx context.Context, call ServiceCall) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO service_calls (sequence, created_at, service, backend, purpose, items, input_tokens, output_tokens, latency_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum,
		formatTime(call.CreatedAt),
		call.Service,
		call.Backend,
		call.Purpose,
		call.Items,
		call.InputTokens,
		call.OutputTokens,
		call.LatencyMs,
		call.Success,
		call.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save service call: %w", err)
	}
	return nil
}

func (r *callRepo) QueryServiceCalls(ctx context.Context, opts QueryOpts) ([]ServiceCall, error) {
	clauses, args := opts.filters()
	if opts.Service != "" {
		clauses = append(clauses, "service = ?")
		args = append(args, opts.Service)
	}
	if opts.Purpose != "" {
		clauses = append(clauses, "purpose = ?")
		args = append(args, opts.Purpose)
	}

	query := `SELECT id, sequence, created_at, service, backend, purpose, items, input_tokens, output_tokens, latency_ms, success, error_message
		FROM service_calls WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query service calls: %w", err)
	}
	defer rows.Close()

	var out []ServiceCall
	for rows.Next() {
		var (
			c       ServiceCall
			created string
		)
		if err := rows.Scan(&c.ID, &c.Sequence, &created, &c.Service, &c.Backend, &c.Purpose,
			&c.Items, &c.InputTokens, &c.OutputTokens, &c.LatencyMs, &c.Success, &c.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan service call: %w", err)
		}
		c.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *callRepo) UsageByService(ctx context.Context) ([]ServiceUsage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT service, backend, COUNT(*), SUM(CASE WHEN success THEN 0 ELSE 1 END),
			AVG(latency_ms), SUM(input_tokens), SUM(output_tokens)
		 FROM service_calls
		 GROUP BY service, backend
		 ORDER BY service, backend`)
	if err != nil {
		return nil, fmt.Errorf("aggregate service calls: %w", err)
	}
	defer rows.Close()

	var out []ServiceUsage
	for rows.Next() {
		var u ServiceUsage
		if err := rows.Scan(&u.Service, &u.Backend, &u.Calls, &u.Failures,
			&u.AvgLatencyMs, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// RecordCall appends call to repo and mirrors it to logger at debug level.
// A nil repo only logs. Journal failures are logged, never returned, so a
// broken journal cannot fail an evaluation.
func RecordCall(ctx context.Context, repo CallRepo, logger *slog.Logger, call ServiceCall) {
	if logger != nil {
		attrs := []any{
			"service", call.Service,
			"backend", call.Backend,
			"purpose", call.Purpose,
			"items", call.Items,
			"latency_ms", call.LatencyMs,
			"success", call.Success,
		}
		if call.ErrorMessage != "" {
			attrs = append(attrs, "error", call.ErrorMessage)
		}
		logger.DebugContext(ctx, "service call", attrs...)
	}
	if repo == nil {
		return
	}
	if err := repo.AppendServiceCall(context.WithoutCancel(ctx), call); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to record service call", "service", call.Service, "error", err)
	}
}
