package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/modportal/portal-api/internal/core/domain"
)

const defaultTimeout = 5 * time.Second

// Config selects the SQL backend.
type Config struct {
	Driver string
	DSN    string
}

// Open connects to the configured database. SQLite is limited to a single
// connection so concurrent writers queue instead of failing with SQLITE_BUSY.
func Open(cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	db, err := OpenDialector(dialector, log)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlstore: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// OpenDialector opens gorm on an explicit dialector. Tests use it with sqlmock.
func OpenDialector(dialector gorm.Dialector, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger: gormlogger.New(&log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dialector.Name(), err)
	}
	return db, nil
}

// Migrate creates or updates every table the portal uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRow{}, &applicationRow{}); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	for _, table := range []string{tasksTable, bugsTable} {
		if err := db.Table(table).AutoMigrate(&reportRow{}); err != nil {
			return fmt.Errorf("sqlstore: migrate %s: %w", table, err)
		}
	}
	return nil
}

// Pinger reports database reachability for readiness checks.
type Pinger struct {
	db *gorm.DB
}

func NewPinger(db *gorm.DB) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}

func notFound(entity domain.EntityType, id int64) error {
	return &domain.NotFoundError{Entity: entity, ID: id}
}
