package results

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"resultados/internal/platform/querier"
)

// Store keeps the dataset in the performance_records table. Row order is the
// dataset order.
type Store struct {
	DB querier.Querier
}

func NewStore(q querier.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) Describe() string {
	return "postgres:performance_records"
}

func (s *Store) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT name, sector, month_label, year, assumed, completed, score, note1, note2, note3
    FROM performance_records
    ORDER BY position
  `)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var score *float64
		if err := rows.Scan(&rec.Name, &rec.Sector, &rec.Month, &rec.Year, &rec.Assumed, &rec.Completed, &score, &rec.Note1, &rec.Note2, &rec.Note3); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if score != nil {
			rec.Score = ValidScore(*score)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Replace swaps the stored dataset inside one transaction.
func (s *Store) Replace(ctx context.Context, records []Record) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM performance_records"); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		var score any
		if value, ok := rec.Score.Value(); ok {
			score = value
		}
		rows[i] = []any{i, rec.Name, rec.Sector, rec.Month, rec.Year, rec.Assumed, rec.Completed, score, rec.Note1, rec.Note2, rec.Note3}
	}
	columns := []string{"position", "name", "sector", "month_label", "year", "assumed", "completed", "score", "note1", "note2", "note3"}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"performance_records"}, columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy records: %w", err)
	}
	return tx.Commit(ctx)
}
