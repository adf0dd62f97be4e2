package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"sitebook/pkg/logger"
)

const migrationsTable = "sys_migrations"

// Migration is one goose-annotated SQL file.
type Migration struct {
	Name string
	Up   string
}

// LoadMigrations reads every *.sql file of fsys in name order and keeps the
// "-- +goose Up" section of each.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		up, err := upSection(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, Migration{Name: strings.TrimSuffix(path.Base(name), ".sql"), Up: up})
	}
	return out, nil
}

func upSection(src string) (string, error) {
	const upMark, downMark = "-- +goose Up", "-- +goose Down"
	start := strings.Index(src, upMark)
	if start < 0 {
		return "", fmt.Errorf("missing %q", upMark)
	}
	body := src[start+len(upMark):]
	if end := strings.Index(body, downMark); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), nil
}

// Migrate applies the migrations of fsys that are not yet recorded in
// sys_migrations. Each file runs in its own transaction.
func Migrate(ctx context.Context, txm *TxManager, fsys fs.FS) (int, error) {
	migrations, err := LoadMigrations(fsys)
	if err != nil {
		return 0, err
	}

	_, err = txm.GetQuerier(ctx).Exec(ctx, `CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", migrationsTable, err)
	}

	applied := 0
	for _, m := range migrations {
		err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
			q := txm.GetQuerier(ctx)
			tag, err := q.Exec(ctx,
				`INSERT INTO `+migrationsTable+` (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, m.Name)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return nil
			}
			if _, err := q.Exec(ctx, m.Up); err != nil {
				return err
			}
			applied++
			logger.Info(ctx, "migration applied", "name", m.Name)
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("migration %s: %w", m.Name, err)
		}
	}
	return applied, nil
}
