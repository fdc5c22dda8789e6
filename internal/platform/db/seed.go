package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"resultados/internal/domain/results"
	"resultados/internal/platform/config"
)

// Seed fills an empty performance_records table from the configured CSV file.
// A table that already holds rows is left alone.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	path := strings.TrimSpace(cfg.SeedDatasetPath)
	if path == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM performance_records").Scan(&count); err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	if count > 0 {
		return nil
	}

	records, err := results.FileSource{Path: path}.Load(ctx)
	if err != nil {
		return fmt.Errorf("load seed dataset: %w", err)
	}
	if err := results.NewStore(pool).Replace(ctx, records); err != nil {
		return fmt.Errorf("seed records: %w", err)
	}
	slog.Info("seeded performance records", "path", path, "count", len(records))
	return nil
}
