package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const sentinelQuery = "SELECT to_regclass('public.reports') IS NOT NULL"

type step struct {
	name string
	sql  string
}

var steps = []step{
	{
		name: "create_table_reports",
		sql: `CREATE TABLE IF NOT EXISTS reports (
  id                 UUID             PRIMARY KEY,
  main_document      TEXT             NOT NULL,
  storage_prefix     TEXT             NOT NULL UNIQUE,
  average_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
  file_count         INTEGER          NOT NULL CHECK (file_count >= 0),
  files              JSONB            NOT NULL DEFAULT '[]'::jsonb,
  created_at         TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		name: "create_index_reports_created_at",
		sql:  `CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at DESC);`,
	},
	{
		name: "create_index_reports_main_document",
		sql:  `CREATE INDEX IF NOT EXISTS idx_reports_main_document ON reports (main_document);`,
	},
}

// EnsureMigrated creates the reports schema unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))
	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	for _, s := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", s.name),
				zap.Error(err),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", s.name, err)
		}
		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", s.name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int("steps", len(steps)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
