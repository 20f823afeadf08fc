// Package db persists harvest runs so incremental crawls can resume
// from the most recently seen order.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoOrders means no order has ever been recorded.
var ErrNoOrders = errors.New("no orders recorded")

// RunRecord describes one completed harvest pass.
type RunRecord struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	Page         int
	OrderCount   int
	FailureCount int
	Uploaded     bool
}

// OrderRecord is the slim per-order row kept for incremental syncs.
type OrderRecord struct {
	ID           string
	SerialNumber string
	Applicant    string
	FormType     string
	Kind         string
	ReceiveTime  string
	Date         string
	Status       string
}

// Counts summarizes what the store holds.
type Counts struct {
	Runs   int `json:"runs"`
	Orders int `json:"orders"`
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the store at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := database.Exec(Schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: database}, nil
}

// NewStore wraps an already opened database that has the schema applied.
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run and returns its id.
func (s *Store) RecordRun(ctx context.Context, run RunRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		insert into runs (started_at, finished_at, page, order_count, failure_count, uploaded)
		values (?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Page,
		run.OrderCount,
		run.FailureCount,
		boolToInt(run.Uploaded),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// RecordOrders attaches order rows to a run. Re-recording the same order
// id within a run is a no-op.
func (s *Store) RecordOrders(ctx context.Context, runID int64, records []OrderRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, record := range records {
		_, err := tx.ExecContext(ctx, `
			insert or ignore into orders
				(run_id, id, serial_number, applicant, form_type, kind, receive_time, order_date, status)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			record.ID,
			record.SerialNumber,
			record.Applicant,
			record.FormType,
			record.Kind,
			record.ReceiveTime,
			record.Date,
			record.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to record order %s: %w", record.ID, err)
		}
	}
	return tx.Commit()
}

// LatestID returns the id of the most recently received order across all
// runs, the resume point for incremental crawls.
func (s *Store) LatestID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		select id from orders
		order by receive_time desc, run_id desc
		limit 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoOrders
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	err := s.db.QueryRowContext(ctx,
		`select (select count(*) from runs), (select count(*) from orders)`).
		Scan(&counts.Runs, &counts.Orders)
	return counts, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
