package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Database stores feeds and their entries in SQLite.
type Database struct {
	db  *sql.DB
	now func() time.Time
}

func Open(ctx context.Context, path string) (*Database, error) {
	if err := migrateDatabase(ctx, path); err != nil {
		return nil, fmt.Errorf("failed to migrate %q database: %w", path, err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf(
		"%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %q database: %w", path, err)
	}

	// SQLite supports only one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %q database: %w", path, err)
	}

	return &Database{db: db, now: time.Now}, nil
}

func migrateDatabase(ctx context.Context, path string) (retErr error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite://"+path)
	if err != nil {
		return err
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if err := errors.Join(sourceErr, dbErr); err != nil && retErr == nil {
			retErr = err
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}

	version, _, err := m.Version()
	if err != nil {
		return err
	}

	logging.L(ctx).Infof("The database has been migrated to version %d.", version)
	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}
