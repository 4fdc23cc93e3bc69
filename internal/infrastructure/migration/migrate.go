// Package migration applies and authors the ledger's SQL migrations.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator applies the ledger schema to one PostgreSQL database
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New reads migrations from fsys: migrations.FS for the embedded set or
// os.DirFS for a directory on disk
func New(db *sql.DB, fsys fs.FS, log *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.apply("up", m.m.Up)
}

// Down rolls the schema back to empty
func (m *Migrator) Down() error {
	return m.apply("down", m.m.Down)
}

// Steps applies n migrations; a negative n rolls back
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("step %d", n), func() error { return m.m.Steps(n) })
}

// apply runs one direction, treating "nothing to do" as success, and logs
// the resulting version
func (m *Migrator) apply(action string, run func() error) error {
	err := run()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info("Schema unchanged", zap.String("action", action))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", action, err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.log.Info("Schema migrated", zap.String("action", action), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Version returns the applied version; zero when nothing is applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running it, to clear a dirty
// schema_migrations row after a failed migration was repaired by hand
func (m *Migrator) Force(version int) error {
	m.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and the database driver
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.m.Close()
	return errors.Join(sourceErr, dbErr)
}
