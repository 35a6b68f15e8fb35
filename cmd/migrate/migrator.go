package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	upSuffix          = ".up.sql"
	downSuffix        = ".down.sql"
	dropAllFile       = "000_drop_all.sql"
	consolidatedFile  = "000_consolidated.sql"
	createMigrationsT = `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
)

// execer is the subset of pgxpool.Pool the migrator needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type migrator struct {
	db  execer
	dir string
}

func newMigrator(db execer, dir string) *migrator {
	return &migrator{db: db, dir: dir}
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// collectUpFiles returns the *.up.sql file names in dir, sorted.
func collectUpFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), upSuffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *migrator) ensureSchemaMigrations(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, createMigrationsT); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (m *migrator) execFile(ctx context.Context, name string) error {
	sql, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := m.db.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	return nil
}

// up applies every migration not yet recorded in schema_migrations.
func (m *migrator) up(ctx context.Context) error {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	upFiles, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}

	applied := 0
	for i, filename := range upFiles {
		name := strings.TrimSuffix(filename, upSuffix)

		var exists bool
		if err := m.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if exists {
			continue
		}

		if err := m.execFile(ctx, filename); err != nil {
			return err
		}
		if _, err := m.db.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		applied++
		slog.Info("migration completed", "number", i+1, "migration", name)
	}

	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
	return nil
}

// down reverts the most recently applied migration using its .down.sql file.
func (m *migrator) down(ctx context.Context) error {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	var name string
	err := m.db.QueryRow(ctx, "SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1").Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find latest migration: %w", err)
	}

	if err := m.execFile(ctx, name+downSuffix); err != nil {
		return err
	}
	if _, err := m.db.Exec(ctx, "DELETE FROM schema_migrations WHERE name=$1", name); err != nil {
		return fmt.Errorf("unrecord migration %s: %w", name, err)
	}
	slog.Info("migration rolled back", "migration", name)
	return nil
}

func (m *migrator) dropAll(ctx context.Context) error {
	slog.Info("dropping all tables")
	if err := m.execFile(ctx, dropAllFile); err != nil {
		return err
	}
	slog.Info("all tables dropped")
	return nil
}

// consolidated applies the single-file schema and marks every migration as
// applied.
func (m *migrator) consolidated(ctx context.Context) error {
	slog.Info("applying consolidated schema")
	if err := m.execFile(ctx, consolidatedFile); err != nil {
		return err
	}

	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	upFiles, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, upSuffix)
		if _, err := m.db.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING", name); err != nil {
			return fmt.Errorf("mark migration %s: %w", name, err)
		}
	}
	slog.Info("consolidated schema applied", "migrations_marked", len(upFiles))
	return nil
}
