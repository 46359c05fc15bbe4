package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booknotes/internal/entities"
	"github.com/mrlokans/booknotes/internal/logging"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Database struct {
	DB      *gorm.DB
	Dialect Dialect
}

// NewDatabase opens the database named by url and migrates the schema.
// A postgres:// or postgresql:// url selects PostgreSQL; anything else is
// treated as a SQLite file path (a leading sqlite:/// is accepted).
func NewDatabase(url string) (*Database, error) {
	dialect, dialector, err := openDialector(url)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(logging.GormWriter{Logger: log.Logger}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db, Dialect: dialect}
	if err := database.Migrate(); err != nil {
		return nil, err
	}

	log.Info().Str("dialect", string(dialect)).Msg("Database initialized")

	return database, nil
}

// Migrate creates or updates every table the application owns.
func (d *Database) Migrate() error {
	err := d.DB.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Membership{},
		&entities.Note{},
		&entities.Quote{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SQLDB exposes the pooled connection for session stores.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openDialector(url string) (Dialect, gorm.Dialector, error) {
	if isPostgresURL(url) {
		sqlDB, err := sql.Open("postgres", url)
		if err != nil {
			return "", nil, fmt.Errorf("failed to open postgres connection: %w", err)
		}
		return DialectPostgres, postgres.New(postgres.Config{Conn: sqlDB}), nil
	}
	return DialectSQLite, sqlite.Open(sqliteDSN(url)), nil
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// sqliteDSN strips an SQLAlchemy-style scheme and turns on foreign keys.
func sqliteDSN(url string) string {
	path := strings.TrimPrefix(url, "sqlite:///")
	path = strings.TrimPrefix(path, "sqlite://")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
