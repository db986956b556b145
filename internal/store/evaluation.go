package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// evaluationRepo implements EvaluationRepo with raw SQL and the global
// sequence counter.
type evaluationRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *evaluationRepo) Save(ctx context.Context, ev *Evaluation) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	ev.Sequence = seqNum

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO evaluations (id, sequence, created_at, student, session, engagement_score, typing_style, similarity_score, submission, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		ev.Sequence,
		formatTime(ev.CreatedAt),
		ev.Student,
		ev.Session,
		ev.EngagementScore,
		ev.TypingStyle,
		ev.SimilarityScore,
		string(ev.Submission),
		string(ev.Report),
	)
	if err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}
	return nil
}

func (r *evaluationRepo) Get(ctx context.Context, id string) (*Evaluation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, sequence, created_at, student, session, engagement_score, typing_style, similarity_score, submission, report
		 FROM evaluations WHERE id = ?`, id)
	ev, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query evaluation: %w", err)
	}
	return ev, nil
}

func (r *evaluationRepo) List(ctx context.Context, opts QueryOpts) ([]Evaluation, error) {
	clauses, args := opts.filters()
	if opts.Student != "" {
		clauses = append(clauses, "student = ?")
		args = append(args, opts.Student)
	}
	if opts.Session != "" {
		clauses = append(clauses, "session = ?")
		args = append(args, opts.Session)
	}

	query := `SELECT id, sequence, created_at, student, session, engagement_score, typing_style, similarity_score, submission, report
		FROM evaluations WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(s scanner) (*Evaluation, error) {
	var (
		ev                 Evaluation
		created            string
		submission, report string
	)
	err := s.Scan(&ev.ID, &ev.Sequence, &created, &ev.Student, &ev.Session,
		&ev.EngagementScore, &ev.TypingStyle, &ev.SimilarityScore, &submission, &report)
	if err != nil {
		return nil, err
	}
	ev.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	ev.Submission = []byte(submission)
	ev.Report = []byte(report)
	return &ev, nil
}

// filters translates the shared sequence/time bounds into SQL clauses.
func (o QueryOpts) filters() ([]string, []any) {
	clauses := []string{"1=1"}
	var args []any
	if o.After > 0 {
		clauses = append(clauses, "sequence > ?")
		args = append(args, o.After)
	}
	if o.Before > 0 {
		clauses = append(clauses, "sequence < ?")
		args = append(args, o.Before)
	}
	if !o.From.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(o.From))
	}
	if !o.To.IsZero() {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, formatTime(o.To))
	}
	return clauses, args
}
