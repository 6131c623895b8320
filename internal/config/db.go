package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"finance_tracker/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	DSN string
}

// LoadDBConfig loads database configuration from environment variables
func LoadDBConfig() (*DBConfig, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbName == "" {
		return nil, fmt.Errorf("database environment variables not set (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	return &DBConfig{DSN: dsn}, nil
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg *DBConfig) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				logger.Get().Info("connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		logger.Get().Warn("failed to connect to database, retrying",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_in", retryInterval),
			zap.Error(err))
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db *pgxpool.Pool) error {
	sql := `
	CREATE TABLE IF NOT EXISTS users (
		id CHAR(24) PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'advisor', 'admin')) DEFAULT 'user',
		status TEXT NOT NULL CHECK (status IN ('Active', 'Suspended')) DEFAULT 'Active',
		assigned_advisor CHAR(24) REFERENCES users(id) ON DELETE SET NULL,
		advisor_profile JSONB,
		is_approved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS cards (
		id CHAR(24) PRIMARY KEY,
		user_id CHAR(24) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		holder_name TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('credit', 'debit')),
		brand TEXT NOT NULL DEFAULT 'Unknown',
		last4 CHAR(4) NOT NULL,
		masked TEXT NOT NULL,
		encrypted_number TEXT,
		encrypted_iv TEXT,
		encrypted_tag TEXT,
		expiry_month SMALLINT NOT NULL CHECK (expiry_month BETWEEN 1 AND 12),
		expiry_year SMALLINT NOT NULL,
		color_theme TEXT NOT NULL DEFAULT '#4fd4c6',
		notes TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		CHECK ((encrypted_number IS NULL) = (encrypted_iv IS NULL) AND (encrypted_iv IS NULL) = (encrypted_tag IS NULL))
	);

	CREATE TABLE IF NOT EXISTS spendings (
		id CHAR(24) PRIMARY KEY,
		user_id CHAR(24) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(14, 2) NOT NULL CHECK (amount >= 0),
		type VARCHAR(16) NOT NULL CHECK (type IN ('income', 'expense')),
		category VARCHAR(100) NOT NULL DEFAULT 'general',
		description TEXT,
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS advisor_requests (
		id CHAR(24) PRIMARY KEY,
		user_id CHAR(24) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		advisor_id CHAR(24) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status VARCHAR(16) NOT NULL CHECK (status IN ('pending', 'approved', 'declined')) DEFAULT 'pending',
		message TEXT NOT NULL DEFAULT '',
		requested_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		responded_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_cards_user_id ON cards(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_spendings_user_date ON spendings(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_advisor_requests_user_status ON advisor_requests(user_id, advisor_id, status);
	CREATE INDEX IF NOT EXISTS idx_advisor_requests_advisor ON advisor_requests(advisor_id, requested_at DESC);
	`
	_, err := db.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	logger.Get().Info("AutoMigrate applied successfully")
	return nil
}
