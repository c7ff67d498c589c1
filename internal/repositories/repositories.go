package repositories

import (
	"database/sql"
	"fmt"
)

// sequence hands out human-readable ordinals from a single-row <table>_sequence counter.
//
// Ordinals order history rows for listing; they never appear in CLI output.
type sequence struct {
	table string
}

func newSequence(table string) sequence {
	return sequence{table: table + "_sequence"}
}

// next increments the counter inside tx, so the ordinal is only spent if the caller's insert commits.
func (s sequence) next(tx *sql.Tx) (int, error) {
	res, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", s.table))
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", s.table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, fmt.Errorf("sequence %s has no counter row", s.table)
	}

	var value int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", s.table)).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", s.table, err)
	}
	return value, nil
}
