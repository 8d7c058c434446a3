package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrLoadMigrations возвращается, если не удалось прочитать файлы миграций
	ErrLoadMigrations = errors.New("migrator: failed to load migrations")

	// ErrApplyMigration возвращается, если миграция упала
	ErrApplyMigration = errors.New("migrator: failed to apply migration")

	// ErrQuery возвращается при ошибках служебных запросов
	ErrQuery = errors.New("migrator: query failed")
)

const createTableQuery = `CREATE TABLE IF NOT EXISTS _migrations (
    version INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migration одна SQL-миграция, версия берется из префикса имени файла (001_init.sql -> 1)
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Status состояние миграции
type Status struct {
	Version   int
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Migrator применяет миграции из fs.FS, каждую в своей транзакции
type Migrator struct {
	db     *sql.DB
	files  fs.FS
	logger Logger
}

func New(db *sql.DB, files fs.FS, logger Logger) *Migrator {
	return &Migrator{db: db, files: files, logger: logger}
}

// Load читает и сортирует миграции; файлы без числового префикса пропускаются
func (m *Migrator) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(m.files, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: read dir: %v", ErrLoadMigrations, err)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		prefix, _, found := strings.Cut(name, "_")
		if !found {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(m.files, name)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrLoadMigrations, name, err)
		}

		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Up применяет все непримененные миграции, возвращает их количество
func (m *Migrator) Up(ctx context.Context) (int, error) {
	migrations, err := m.Load()
	if err != nil {
		return 0, err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		if err := m.apply(ctx, mig); err != nil {
			return count, err
		}
		m.logger.Info("Migration applied: %s", mig.Name)
		count++
	}

	return count, nil
}

// Status возвращает список миграций с отметкой о применении
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	migrations, err := m.Load()
	if err != nil {
		return nil, err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Status, 0, len(migrations))
	for _, mig := range migrations {
		st := Status{Version: mig.Version, Name: mig.Name}
		if at, ok := applied[mig.Version]; ok {
			at := at
			st.Applied = true
			st.AppliedAt = &at
		}
		result = append(result, st)
	}

	return result, nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	if _, err := m.db.ExecContext(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("%w: create _migrations: %v", ErrQuery, err)
	}

	rows, err := m.db.QueryContext(ctx, "SELECT version, applied_at FROM _migrations")
	if err != nil {
		return nil, fmt.Errorf("%w: select versions: %v", ErrQuery, err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version   int
			appliedAt time.Time
		)
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("%w: scan version: %v", ErrQuery, err)
		}
		applied[version] = appliedAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate versions: %v", ErrQuery, err)
	}

	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %s - begin: %v", ErrApplyMigration, mig.Name, err)
	}

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s - exec: %v", ErrApplyMigration, mig.Name, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO _migrations (version, name) VALUES ($1, $2)", mig.Version, mig.Name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s - record: %v", ErrApplyMigration, mig.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s - commit: %v", ErrApplyMigration, mig.Name, err)
	}

	return nil
}
