package postgres

import (
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/eventmarket/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS organizer (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name VARCHAR(100) NOT NULL,
			bank_code TEXT,
			account_number VARCHAR(10),
			account_name TEXT,
			paystack_recipient_code TEXT,
			available_balance BIGINT NOT NULL DEFAULT 0 CHECK (available_balance >= 0),
			pending_balance BIGINT NOT NULL DEFAULT 0 CHECK (pending_balance >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS event (
			id TEXT PRIMARY KEY,
			organizer_id TEXT NOT NULL REFERENCES organizer(id) ON DELETE CASCADE,
			title VARCHAR(100) NOT NULL,
			slug VARCHAR(100) NOT NULL,
			description TEXT,
			venue_address TEXT,
			start_date TIMESTAMPTZ,
			end_date TIMESTAMPTZ,
			timezone TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'DRAFT',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT event_dates_check CHECK (end_date IS NULL OR start_date IS NULL OR end_date > start_date)
		)`,

		`CREATE TABLE IF NOT EXISTS event_banner (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			blurhash TEXT,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ticket_type (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			price BIGINT NOT NULL CHECK (price >= 0),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			sold_count INTEGER NOT NULL DEFAULT 0 CHECK (sold_count >= 0 AND sold_count <= quantity),
			sales_start_date TIMESTAMPTZ,
			sales_end_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Indexes
		`CREATE UNIQUE INDEX IF NOT EXISTS organizer_owner_id_idx ON organizer(owner_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS event_slug_idx ON event(slug)`,
		`CREATE INDEX IF NOT EXISTS event_organizer_id_idx ON event(organizer_id)`,
		`CREATE INDEX IF NOT EXISTS event_banner_event_id_idx ON event_banner(event_id)`,
		`CREATE INDEX IF NOT EXISTS ticket_type_event_id_idx ON ticket_type(event_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
