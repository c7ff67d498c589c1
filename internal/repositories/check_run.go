package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/hlsx/internal/formatter"
	"github.com/desertthunder/hlsx/internal/ladder"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/shared"
	"github.com/desertthunder/hlsx/internal/tasks"
)

const checkRunColumns = `id, sequence, run_id, kind, url, profile, severity, message, findings, created_at, updated_at, deleted_at`

var _ models.Repository[*models.CheckRun] = (*CheckRunRepository)(nil)
var _ tasks.Recorder = (*CheckRunRepository)(nil)

// CheckRunRepository implements models.Repository[*models.CheckRun] for check history.
//
// Handles check run CRUD operations with soft delete support and URL/run lookups.
type CheckRunRepository struct {
	db  *sql.DB
	seq sequence
}

// NewCheckRunRepository creates a new CheckRunRepository with the given database connection
func NewCheckRunRepository(db *sql.DB) *CheckRunRepository {
	return &CheckRunRepository{db: db, seq: newSequence("check_runs")}
}

// Create inserts a new check run into the database with generated ID and sequence.
//
// The sequence increment and the insert share a transaction.
func (r *CheckRunRepository) Create(run *models.CheckRun) error {
	run.SetID(shared.GenerateID())
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := r.seq.next(tx)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.SetSequence(sequence)

	query := `
		INSERT INTO check_runs (id, sequence, run_id, kind, url, profile, severity, message, findings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		run.ID(),
		sequence,
		run.RunID(),
		string(run.Kind()),
		run.URL(),
		run.Profile(),
		int(run.Severity()),
		run.Message(),
		run.Findings(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert check run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit check run: %w", err)
	}
	return nil
}

// Get retrieves a check run by ID, excluding soft-deleted runs
func (r *CheckRunRepository) Get(id string) (*models.CheckRun, error) {
	query := `SELECT ` + checkRunColumns + ` FROM check_runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanCheckRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCheckRunNotFound, id)
	}
	return run, err
}

// Update modifies the severity and message of an existing check run
func (r *CheckRunRepository) Update(run *models.CheckRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE check_runs
		SET severity = ?, message = ?, findings = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, int(run.Severity()), run.Message(), run.Findings(), now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update check run: %w", err)
	}

	return affectedOne(result, run.ID())
}

// Delete soft-deletes a check run by ID
func (r *CheckRunRepository) Delete(id string) error {
	query := `
		UPDATE check_runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete check run: %w", err)
	}

	return affectedOne(result, id)
}

// List retrieves check runs matching the given criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: url, kind, run_id (string), severity (int or [ladder.Severity]) and limit (int).
func (r *CheckRunRepository) List(criteria map[string]any) ([]*models.CheckRun, error) {
	query := `SELECT ` + checkRunColumns + ` FROM check_runs WHERE deleted_at IS NULL`
	args := []any{}

	for _, key := range []string{"url", "kind", "run_id"} {
		if v, ok := criteria[key].(string); ok && v != "" {
			query += " AND " + key + " = ?"
			args = append(args, v)
		}
	}

	switch s := criteria["severity"].(type) {
	case ladder.Severity:
		query += " AND severity = ?"
		args = append(args, int(s))
	case int:
		query += " AND severity = ?"
		args = append(args, s)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query check runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.CheckRun
	for rows.Next() {
		run, err := scanCheckRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Recent returns the latest limit check runs.
func (r *CheckRunRepository) Recent(limit int) ([]*models.CheckRun, error) {
	return r.List(map[string]any{"limit": limit})
}

// RecordResult stores a URL result from a check run. It implements tasks.Recorder.
func (r *CheckRunRepository) RecordResult(ctx context.Context, runID, profile string, res tasks.URLResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	findings := "[]"
	if res.Match != nil && len(res.Match.Findings) > 0 {
		data, err := json.Marshal(formatter.NewFindingDocs(res.Match.Findings))
		if err != nil {
			return fmt.Errorf("failed to encode findings: %w", err)
		}
		findings = string(data)
	}

	run := models.NewCheckRun(0, runID, res.Kind, res.URL, profile, res.Severity, res.Message, findings)
	if !res.CheckedAt.IsZero() {
		run.SetCreatedAt(res.CheckedAt)
		run.SetUpdatedAt(res.CheckedAt)
	}
	return r.Create(run)
}

// DecodeFindings parses the findings stored with a check run.
func DecodeFindings(run *models.CheckRun) ([]formatter.FindingDoc, error) {
	if run.Findings() == "" {
		return nil, nil
	}
	var docs []formatter.FindingDoc
	if err := json.Unmarshal([]byte(run.Findings()), &docs); err != nil {
		return nil, fmt.Errorf("failed to decode findings: %w", err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCheckRun scans a single row from [sql.Row] or [sql.Rows] into a [models.CheckRun]
func scanCheckRun(row rowScanner) (*models.CheckRun, error) {
	var (
		id        string
		sequence  int
		runID     string
		kind      string
		url       string
		profile   string
		severity  int
		message   string
		findings  string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &kind, &url, &profile, &severity, &message, &findings, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan check run: %w", err)
	}

	run := models.NewCheckRun(sequence, runID, models.CheckKind(kind), url, profile, ladder.Severity(severity), message, findings)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func affectedOne(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", shared.ErrCheckRunNotFound, id)
	}
	return nil
}
