// internal/journal/journal.go
//
// Append-only record of finished rounds (won or lost) and the summary views
// built from it. Game state itself is never stored or restored.

package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/lemonle/internal/game"
)

// tsLayout is fixed-width so finished_at sorts as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Result is one finished round.
type Result struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Round      int       `json:"round"`
	Solution   string    `json:"solution"`
	Status     string    `json:"status"` // won | lost
	Attempts   int       `json:"attempts"`
	Grid       string    `json:"grid"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Summary aggregates every recorded round.
// Distribution[i] counts rounds won in i+1 attempts.
type Summary struct {
	Played       int            `json:"played"`
	Won          int            `json:"won"`
	WinRate      float64        `json:"winRate"`
	Distribution [game.Rows]int `json:"distribution"`
}

// Journal wraps the results database.
type Journal struct{ db *sql.DB }

// Open opens the database at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dsn, err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Record inserts r. ID and FinishedAt are filled when zero.
// A second record for the same (session, round) is ignored.
func (j *Journal) Record(ctx context.Context, r Result) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
        INSERT INTO results
            (id, session_id, round, solution, status, attempts, grid, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (session_id, round) DO NOTHING`,
		r.ID, r.SessionID, r.Round, r.Solution, r.Status, r.Attempts, r.Grid,
		r.FinishedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Recent returns the newest results first. Default limit is 20.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
        SELECT id, session_id, round, solution, status, attempts, grid, finished_at
        FROM results
        ORDER BY finished_at DESC, id ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var finished string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Round, &r.Solution, &r.Status, &r.Attempts, &r.Grid, &finished); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = time.Parse(tsLayout, finished); err != nil {
			return nil, fmt.Errorf("journal: recent: finished_at of %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary computes totals and the attempts distribution of won rounds.
func (j *Journal) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	rows, err := j.db.QueryContext(ctx, `
        SELECT status, attempts, COUNT(1)
        FROM results
        GROUP BY status, attempts`)
	if err != nil {
		return s, fmt.Errorf("journal: summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var attempts, n int
		if err := rows.Scan(&status, &attempts, &n); err != nil {
			return s, err
		}
		s.Played += n
		if status == game.StatusWon.String() {
			s.Won += n
			if attempts >= 1 && attempts <= game.Rows {
				s.Distribution[attempts-1] += n
			}
		}
	}
	if err := rows.Err(); err != nil {
		return s, err
	}
	if s.Played > 0 {
		s.WinRate = float64(s.Won) / float64(s.Played)
	}
	return s, nil
}
