package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"gestaopro/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	migrationsDir = "migrations"

	// migrationLockID is the advisory lock key held while migrations run.
	migrationLockID int64 = 0x6765737461
)

var (
	gooseOnce sync.Once
	gooseErr  error
)

// setupGoose points goose at the embedded files. Goose keeps this in package state.
func setupGoose() error {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrationFiles)
		goose.SetLogger(gooseLogger{})
		gooseErr = goose.SetDialect("postgres")
	})
	return gooseErr
}

// EmbeddedMigrations lists the migrations compiled into the binary, ordered by version.
func EmbeddedMigrations() (goose.Migrations, error) {
	if err := setupGoose(); err != nil {
		return nil, err
	}
	return goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
}

// Migrate applies pending migrations and returns how many ran.
func Migrate(ctx context.Context, pool *Pool) (int, error) {
	if err := setupGoose(); err != nil {
		return 0, err
	}

	var applied int
	err := withMigrationLock(ctx, pool, func(db *sql.DB) error {
		before, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		after, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if after > before {
			ran, err := goose.CollectMigrations(migrationsDir, before, after)
			if err != nil {
				return err
			}
			applied = len(ran)
		}
		return nil
	})
	return applied, err
}

// Rollback reverts the latest applied migration and returns its name.
// An empty name means nothing was applied.
func Rollback(ctx context.Context, pool *Pool) (string, error) {
	if err := setupGoose(); err != nil {
		return "", err
	}

	var name string
	err := withMigrationLock(ctx, pool, func(db *sql.DB) error {
		version, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if version == 0 {
			return nil
		}

		all, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
		if err != nil {
			return err
		}
		current, err := all.Current(version)
		if err != nil {
			return fmt.Errorf("migration %d is applied but unknown to this binary: %w", version, err)
		}

		if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("revert migration %d: %w", version, err)
		}
		name = migrationName(current)
		return nil
	})
	return name, err
}

// withMigrationLock serialises migration runs of several instances on a session advisory lock.
func withMigrationLock(ctx context.Context, pool *Pool, fn func(db *sql.DB) error) (err error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer func() {
		_, unlockErr := conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migrationLockID)
		err = errors.Join(err, unlockErr)
	}()

	db := stdlib.OpenDBFromPool(pool.Pool)
	defer db.Close()

	return fn(db)
}

func migrationName(m *goose.Migration) string {
	return strings.TrimSuffix(path.Base(m.Source), path.Ext(m.Source))
}

// gooseLogger routes goose output through the process logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logger.Default().WithComponent("migrate").Infof(strings.TrimSpace(format), v...)
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logger.Default().WithComponent("migrate").Fatalf(strings.TrimSpace(format), v...)
}
