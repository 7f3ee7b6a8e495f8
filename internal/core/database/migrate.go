package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a user-supplied direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case Up, Down:
		return d, nil
	default:
		return "", fmt.Errorf("direction must be 'up' or 'down', got %q", s)
	}
}

// Migrator applies the .sql files of a directory. Each file has an Up and a
// Down section and runs in its own transaction.
type Migrator struct {
	db   *sql.DB
	fsys fs.FS
}

// NewMigrator uses dir when given, the embedded migrations otherwise.
func NewMigrator(db *sql.DB, dir string) (*Migrator, error) {
	if dir == "" {
		sub, err := fs.Sub(migrationsFS, "migrations")
		if err != nil {
			return nil, fmt.Errorf("embedded migrations: %w", err)
		}
		return newMigrator(db, sub), nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations path %q is not a directory", dir)
	}
	return newMigrator(db, os.DirFS(dir)), nil
}

func newMigrator(db *sql.DB, fsys fs.FS) *Migrator {
	return &Migrator{db: db, fsys: fsys}
}

// Run applies every migration in the given direction, stopping at the first
// failure. Files that already ran stay committed.
func (m *Migrator) Run(ctx context.Context, direction Direction) error {
	files, err := m.files(direction)
	if err != nil {
		return err
	}

	for _, name := range files {
		log.Info().Str("file", name).Str("direction", string(direction)).Msg("running migration")
		if err := m.runFile(ctx, name, direction); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}

	log.Info().Int("files", len(files)).Msgf("completed all %s migrations", direction)
	return nil
}

func (m *Migrator) files(direction Direction) ([]string, error) {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if direction == Down {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}
	return names, nil
}

func (m *Migrator) runFile(ctx context.Context, name string, direction Direction) error {
	content, err := fs.ReadFile(m.fsys, name)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	statements, err := parseMigration(string(content), direction)
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// parseMigration returns the statements of one section of a migration file.
func parseMigration(content string, direction Direction) ([]string, error) {
	upIdx := strings.Index(content, upMarker)
	downIdx := strings.Index(content, downMarker)
	if upIdx < 0 || downIdx < 0 || downIdx < upIdx {
		return nil, fmt.Errorf("migration must contain %q followed by %q", upMarker, downMarker)
	}

	var section string
	switch direction {
	case Up:
		section = content[upIdx+len(upMarker) : downIdx]
	case Down:
		section = content[downIdx+len(downMarker):]
	default:
		return nil, fmt.Errorf("direction must be 'up' or 'down', got %q", direction)
	}

	var out []string
	for _, stmt := range strings.Split(section, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out, nil
}
