package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type Migrator struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMigrator(db *sql.DB, logger *slog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

func (m *Migrator) Migrate(ctx context.Context) error {
	migrations := []struct {
		name  string
		query string
	}{
		{
			name: "create_trades_table",
			query: `
				CREATE TABLE IF NOT EXISTS trades (
					id TEXT PRIMARY KEY,
					exchange TEXT NOT NULL,
					symbol TEXT NOT NULL,
					price REAL NOT NULL,
					quantity REAL NOT NULL,
					side TEXT NOT NULL,
					trade_time INTEGER NOT NULL
				)
			`,
		},
		{
			name: "create_trades_symbol_time_index",
			query: `
				CREATE INDEX IF NOT EXISTS idx_trades_symbol_time
				ON trades (symbol, exchange, trade_time)
			`,
		},
	}

	for _, migration := range migrations {
		m.logger.Info("Running migration", "name", migration.name)
		if _, err := m.db.ExecContext(ctx, migration.query); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.name, err)
		}
	}

	m.logger.Info("All migrations completed successfully")
	return nil
}
