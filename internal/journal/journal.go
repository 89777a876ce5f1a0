// Package journal keeps a local SQLite log of expense submissions. It is an
// audit trail of what the dashboard sent, never a copy of the budget.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"orcamento/internal/core"
)

// DefaultLimit is the number of entries Recent returns for a non-positive n.
const DefaultLimit = 20

// timeLayout is fixed width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Journal records submissions in a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open creates the database file if needed and migrates it.
func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record stores one submission. Local validation failures are not journaled.
func (j *Journal) Record(ctx context.Context, s core.Submission) error {
	if s.Outcome == core.OutcomeInvalid {
		return nil
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	paid := 0
	if s.Expense.Paid {
		paid = 1
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO submissions (description, amount_cents, due_day, paid, remaining_cents, outcome, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Expense.Description,
		s.Expense.Amount.Cents,
		s.Expense.DueDay,
		paid,
		s.Expense.Remaining.Cents,
		string(s.Outcome),
		s.Message,
		s.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Recent returns the latest n submissions, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]core.Submission, error) {
	if n <= 0 {
		n = DefaultLimit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, due_day, paid, remaining_cents, outcome, message, created_at
		FROM submissions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []core.Submission
	for rows.Next() {
		var (
			s         core.Submission
			paid      int
			outcome   string
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.Expense.Description, &s.Expense.Amount.Cents, &s.Expense.DueDay,
			&paid, &s.Expense.Remaining.Cents, &outcome, &s.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		s.Expense.Paid = paid != 0
		s.Outcome = core.Outcome(outcome)
		if t, err := time.Parse(timeLayout, createdAt); err == nil {
			s.CreatedAt = t
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}
