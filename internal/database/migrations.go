package database

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// Migrations is the schema history of the jobly database, oldest first.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "create companies table",
		Up: `
			CREATE TABLE IF NOT EXISTS companies (
				handle VARCHAR(25) PRIMARY KEY CHECK (handle = lower(handle)),
				name TEXT NOT NULL CONSTRAINT companies_name_key UNIQUE,
				description TEXT NOT NULL,
				num_employees INTEGER CHECK (num_employees >= 0),
				logo_url TEXT
			)
		`,
		Down: `DROP TABLE IF EXISTS companies`,
	},
	{
		Version:     2,
		Description: "create jobs table",
		Up: `
			CREATE TABLE IF NOT EXISTS jobs (
				id SERIAL PRIMARY KEY,
				title TEXT NOT NULL,
				salary INTEGER CHECK (salary >= 0),
				equity NUMERIC CHECK (equity >= 0 AND equity <= 1.0),
				company_handle VARCHAR(25) NOT NULL
					REFERENCES companies ON DELETE CASCADE
			)
		`,
		Down: `DROP TABLE IF EXISTS jobs`,
	},
}

type Migrator struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewMigrator(db *gorm.DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

func (m *Migrator) CreateMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	if err := m.db.WithContext(ctx).Exec(query).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]bool, error) {
	var versions []int
	err := m.db.WithContext(ctx).
		Raw("SELECT version FROM schema_migrations ORDER BY version").
		Scan(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}

	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

func (m *Migrator) ApplyMigration(ctx context.Context, migration Migration) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(migration.Up).Error; err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}

		if err := tx.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		).Error; err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		return nil
	})
}

func (m *Migrator) RollbackMigration(ctx context.Context, migration Migration) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(migration.Down).Error; err != nil {
			return fmt.Errorf("failed to rollback migration %d: %w", migration.Version, err)
		}

		if err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", migration.Version).Error; err != nil {
			return fmt.Errorf("failed to remove migration record %d: %w", migration.Version, err)
		}
		return nil
	})
}

// Up applies every migration that has not been recorded yet, in version order.
func (m *Migrator) Up(ctx context.Context, migrations []Migration) error {
	if err := m.CreateMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	pending := make([]Migration, 0, len(migrations))
	for _, mig := range migrations {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, mig := range pending {
		m.logger.Info("applying migration",
			zap.Int("version", mig.Version),
			zap.String("description", mig.Description))
		if err := m.ApplyMigration(ctx, mig); err != nil {
			return err
		}
	}

	m.logger.Info("schema up to date", zap.Int("applied", len(pending)))
	return nil
}

// Down rolls back every applied migration, newest first.
func (m *Migrator) Down(ctx context.Context, migrations []Migration) error {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version > sorted[j].Version })

	for _, mig := range sorted {
		if !applied[mig.Version] {
			continue
		}
		m.logger.Info("rolling back migration", zap.Int("version", mig.Version))
		if err := m.RollbackMigration(ctx, mig); err != nil {
			return err
		}
	}
	return nil
}
