package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/revenuewire/translation/internal/catalog"
	"github.com/revenuewire/translation/internal/queue"
)

// Models lists every persisted table in creation order.
func Models() []any {
	return []any{
		(*catalog.Unit)(nil),
		(*queue.Item)(nil),
		(*queue.Project)(nil),
	}
}

// Connect opens a SQLite-backed bun handle. The DSN follows the
// mattn/go-sqlite3 format, e.g. "file:translations.db?_fk=1" or
// "file::memory:?cache=shared".
func Connect(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", dsn, err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateTables provisions the schema, tolerating tables that already exist
// so initialization can run repeatedly.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	return nil
}
