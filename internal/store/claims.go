package store

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Claim is the durable record of a completed airdrop claim. Rows are
// append-only: one row per subject, never updated or deleted.
type Claim struct {
	ID            uuid.UUID
	Subject       string
	Email         string
	WalletAddress string
	TxSignature   string
	Claimed       bool
	CreatedAt     time.Time
}

const claimsSchema = `
CREATE TABLE IF NOT EXISTS airdrop_claims (
    id             UUID PRIMARY KEY,
    subject        TEXT NOT NULL UNIQUE,
    email          TEXT,
    wallet_address TEXT NOT NULL,
    tx_signature   TEXT NOT NULL,
    claimed        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Store persists claim records in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pgx connection pool against databaseURL, retrying the
// initial ping with exponential backoff so the service tolerates a database
// that is still starting up.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 20
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	ping := func() error {
		return pool.Ping(ctx)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// EnsureSchema applies the claims table DDL. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, claimsSchema)
	return err
}

// GetClaim returns the claim record for subject, or nil when none exists.
func (s *Store) GetClaim(ctx context.Context, subject string) (*Claim, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, subject, COALESCE(email, ''), wallet_address, tx_signature, claimed, created_at
		 FROM airdrop_claims WHERE subject = $1`, subject)

	var c Claim
	err := row.Scan(&c.ID, &c.Subject, &c.Email, &c.WalletAddress, &c.TxSignature, &c.Claimed, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateClaimIfAbsent inserts the claim record unless a row for the subject
// already exists. It reports whether the insert took effect. The UNIQUE
// constraint on subject makes this the linearization point for concurrent
// claims of the same identity.
func (s *Store) CreateClaimIfAbsent(ctx context.Context, c Claim) (bool, error) {
	var email any
	if c.Email != "" {
		email = c.Email
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO airdrop_claims (id, subject, email, wallet_address, tx_signature, claimed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (subject) DO NOTHING`,
		c.ID, c.Subject, email, c.WalletAddress, c.TxSignature, c.Claimed, c.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
