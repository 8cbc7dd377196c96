package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	customerdomain "github.com/smallbiznis/invoicelens/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicelens/internal/invoice/domain"
	vendordomain "github.com/smallbiznis/invoicelens/internal/vendors/domain"
	"github.com/smallbiznis/invoicelens/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists the tables in creation order.
func Models() []any {
	return []any{
		&vendordomain.Vendor{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.LineItem{},
		&invoicedomain.Payment{},
	}
}

// Migrator brings the invoice tables up to date.
type Migrator struct {
	conn *gorm.DB
	cfg  db.Config
	log  *zap.Logger
}

func NewMigrator(conn *gorm.DB, cfg db.Config, log *zap.Logger) *Migrator {
	return &Migrator{conn: conn, cfg: cfg, log: log.Named("migration")}
}

// Up applies the bundled SQL schema on postgres and gorm AutoMigrate elsewhere.
func (m *Migrator) Up(ctx context.Context) error {
	if m.cfg.IsPostgres() {
		sqlDB, err := m.conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		m.log.Info("schema migrated", zap.String("driver", "postgres"))
		return nil
	}

	if err := AutoMigrate(ctx, m.conn); err != nil {
		return err
	}
	m.log.Info("schema migrated", zap.String("driver", m.cfg.Type))
	return nil
}

// AutoMigrate creates the invoice tables from the gorm models.
func AutoMigrate(ctx context.Context, conn *gorm.DB) error {
	if err := conn.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
