package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresNonceStore implements NonceStore on PostgreSQL. Each allocation is
// a single atomic upsert, so counters survive restarts and two agents
// sharing a database can never be handed the same nonce.
type PostgresNonceStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

const createNonceTable = `
	CREATE TABLE IF NOT EXISTS nonce_counters (
		origin  TEXT PRIMARY KEY,
		counter BIGINT NOT NULL
	)
`

const allocateNonce = `
	INSERT INTO nonce_counters (origin, counter)
	VALUES ($1, 1)
	ON CONFLICT (origin)
	DO UPDATE SET counter = nonce_counters.counter + 1
	RETURNING counter
`

// NewPostgresNonceStore connects and ensures the counter table exists.
func NewPostgresNonceStore(cfg *PostgresConfig) (*PostgresNonceStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	_, err = db.Exec(createNonceTable)
	if err != nil {
		return nil, fmt.Errorf("create nonce table: %w", err)
	}

	cfg.Logger.Info("postgres-nonce-store-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresNonceStore{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// Next allocates the next nonce for origin with one atomic upsert.
func (p *PostgresNonceStore) Next(ctx context.Context, origin string) (uint64, error) {
	var nonce uint64
	err := p.db.QueryRowContext(ctx, allocateNonce, origin).Scan(&nonce)
	if err != nil {
		return 0, fmt.Errorf("allocate nonce: %w", err)
	}

	p.logger.Debug("nonce-allocated",
		zap.String("origin", origin),
		zap.Uint64("nonce", nonce))

	return nonce, nil
}

// Close closes the database connection.
func (p *PostgresNonceStore) Close() error {
	p.logger.Info("closing-postgres-nonce-store")
	return p.db.Close()
}
