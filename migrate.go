package accounts

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Migration files follow {version}_{name}.sql, e.g. 0001_users.sql.
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

type migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies the embedded schema migrations in version order, each in
// its own transaction, tracking applied versions in a _migrations table.
type Migrator struct {
	source fs.FS
	dir    string
	logger Logger
}

func NewMigrator(source fs.FS, dir string) *Migrator {
	return &Migrator{
		source: source,
		dir:    dir,
		logger: defLogger{},
	}
}

func (m *Migrator) WithLogger(logger Logger) *Migrator {
	if logger != nil {
		m.logger = logger
	}
	return m
}

func (m *Migrator) Run(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (
		version INTEGER PRIMARY KEY,
		name VARCHAR NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create migrations table")
	}

	applied, err := m.appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	migrations, err := m.parse()
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}

		err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO _migrations (version, name) VALUES (?, ?)",
				mig.Version, mig.Name,
			)
			return err
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal,
				fmt.Sprintf("failed to apply migration %04d_%s", mig.Version, mig.Name))
		}

		m.logger.Info("applied migration", "version", mig.Version, "name", mig.Name)
	}

	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context, db *bun.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM _migrations")
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read applied migrations")
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to scan migration version")
		}
		applied[version] = true
	}

	if err := rows.Err(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read applied migrations")
	}

	return applied, nil
}

func (m *Migrator) parse() ([]migration, error) {
	var migrations []migration

	err := fs.WalkDir(m.source, m.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := migrationFilePattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])

		content, err := fs.ReadFile(m.source, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		migrations = append(migrations, migration{
			Version: version,
			Name:    matches[2],
			SQL:     string(content),
		})

		return nil
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse migrations")
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}
