// Package postgres implements every persistence operation the service
// needs as plain sqlx queries: explicit SQL, no ORM.
package postgres

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"
)

// Config holds the connection parameters for Connect.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Store wraps a *sqlx.DB with one method group per logical table.
type Store struct {
	db *sqlx.DB
}

func Connect(cfg Config) (*Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Errorf("postgres: failed to connect: %v", err)
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		logx.Errorf("postgres: failed to ping: %v", err)
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	logx.Info("postgres: connected")
	return &Store{db: db}, nil
}

func New(db *sqlx.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sqlx.DB { return s.db }
