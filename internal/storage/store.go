// Package storage owns the relational store: connection setup, schema
// migrations and the seeded default account. Record access goes through the
// gorm handle returned by DB; raw SQL goes through a scoped Conn.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/leave-request/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

type Store struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	sqlx    *sqlx.DB
	dialect string
	logger  *slog.Logger
}

// Open connects to the configured store. It does not touch the schema; call
// Initialize for that.
func Open(cfg internal.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	var (
		dialector  gorm.Dialector
		driverName string
		dialect    string
	)

	switch cfg.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Source)
		driverName = "sqlite3"
		dialect = "sqlite3"
	case "postgres":
		dialector = postgres.Open(cfg.Source)
		driverName = "pgx"
		dialect = "postgres"
	default:
		return nil, internal.NewConfigurationError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), internal.ErrCodeInvalidSetting)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, internal.NewStorageError("failed to open database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, internal.NewStorageError("failed to get sql handle", err)
	}

	if dialect == "sqlite3" {
		// a single writer avoids "database is locked" under concurrent submissions
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	// verify connection; close underlying *sql.DB on failure
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, internal.NewStorageError("failed to ping database", err)
	}

	return &Store{
		db:      db,
		sqlDB:   sqlDB,
		sqlx:    sqlx.NewDb(sqlDB, driverName),
		dialect: dialect,
		logger:  logger,
	}, nil
}

// Initialize brings the schema up to date and seeds the default user. Safe to
// call any number of times.
func (s *Store) Initialize(ctx context.Context, seed internal.DefaultUserConfig) error {
	if err := s.Migrate(ctx, false); err != nil {
		return err
	}

	if seed.Email == "" {
		s.logger.Warn("default user not configured, skipping seed")
		return nil
	}

	created, err := s.SeedUser(ctx, seed.Email, seed.Password)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("seeded default user", "email", seed.Email)
	}
	return nil
}

// Migrate applies (or rolls back the latest of) the embedded migrations.
func (s *Store) Migrate(ctx context.Context, rollback bool) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationsTable)
	if err := goose.SetDialect(s.dialect); err != nil {
		return internal.NewStorageError("failed to set migration dialect", err)
	}

	dir := "migrations/" + strings.TrimSuffix(s.dialect, "3")

	if rollback {
		if err := goose.DownContext(ctx, s.sqlDB, dir); err != nil {
			return internal.NewStorageError("migration rollback failed", err)
		}
		return nil
	}

	if err := goose.UpContext(ctx, s.sqlDB, dir); err != nil {
		return internal.NewStorageError("migration failed", err)
	}
	return nil
}

// SeedUser inserts a user unless one with the same email already exists.
// It reports whether a row was created.
func (s *Store) SeedUser(ctx context.Context, email, password string) (bool, error) {
	if password == "" {
		return false, internal.NewConfigurationError("DEFAULT_USER_PASSWORD is required when DEFAULT_USER is set", internal.ErrCodeMissingSetting)
	}

	conn, err := s.Conn(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	var count int
	if err := conn.GetContext(ctx, &count, conn.Rebind("SELECT COUNT(1) FROM users WHERE email = ?"), email); err != nil {
		return false, internal.NewStorageError("failed to look up user", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, internal.NewInternalError("failed to hash password", err)
	}

	res, err := conn.ExecContext(ctx,
		conn.Rebind("INSERT INTO users (email, password) VALUES (?, ?) ON CONFLICT (email) DO NOTHING"),
		email, string(hash))
	if err != nil {
		return false, internal.NewStorageError("failed to insert user", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, internal.NewStorageError("failed to read insert result", err)
	}
	return n > 0, nil
}

// Conn returns a dedicated connection. The caller must Close it on every path.
func (s *Store) Conn(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := s.sqlx.Connx(ctx)
	if err != nil {
		return nil, internal.NewStorageError("failed to acquire connection", err)
	}
	return conn, nil
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) SQL() *sql.DB {
	return s.sqlDB
}

func (s *Store) Dialect() string {
	return s.dialect
}

func (s *Store) Close() error {
	return s.sqlDB.Close()
}
