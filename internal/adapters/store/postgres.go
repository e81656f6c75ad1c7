package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/ImpertiantLoris/solmate-bot/internal/core/domain"
)

// PostgresStore implements domain.UserStore on Postgres. The database is the
// system of record; per-key conflict resolution on telegram_id is the only
// serialization point in the whole service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and waits for the database to
// become reachable.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	for i := 0; i < 5; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		log.Printf("Waiting for DB... (%d/5): %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	log.Println("✅ Connected to identity store")
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreWithDB wraps an existing connection, mainly for tests.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the users table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		telegram_id        BIGINT PRIMARY KEY,
		username           TEXT NOT NULL DEFAULT '',
		wallet_public_key  TEXT NOT NULL DEFAULT '',
		wallet_private_key TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS users_username_idx
		ON users (username) WHERE username <> '';`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: creating schema: %v", domain.ErrStorage, err)
	}
	return nil
}

const selectColumns = `telegram_id, username, wallet_public_key, wallet_private_key, created_at`

// GetByTelegramID returns the record for id, or (nil, nil) when absent.
func (s *PostgresStore) GetByTelegramID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM users WHERE telegram_id = $1`, id)
	return scanUser(row)
}

// GetByUsername returns the record with the exact handle, or (nil, nil)
// when absent. Matching is case-sensitive.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// Upsert inserts or updates the record keyed on telegram_id. The conflict
// clause overwrites the handle (last writer wins) but keeps the first-written
// keypair: once wallet_public_key is set it is never replaced, and the
// private key travels with whichever public key survives. Callers still
// re-check before writing; this clause is the store-side enforcement of the
// issuance invariant. Note the remaining race: of two concurrent first-time
// issuances, the loser's generated keypair is silently discarded.
func (s *PostgresStore) Upsert(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, username, wallet_public_key, wallet_private_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			wallet_public_key = CASE WHEN users.wallet_public_key <> ''
				THEN users.wallet_public_key ELSE EXCLUDED.wallet_public_key END,
			wallet_private_key = CASE WHEN users.wallet_public_key <> ''
				THEN users.wallet_private_key ELSE EXCLUDED.wallet_private_key END`,
		user.TelegramID, user.Username, user.WalletPublicKey, user.WalletPrivateKey.Reveal())
	if err != nil {
		return fmt.Errorf("%w: upserting user %d: %v", domain.ErrStorage, user.TelegramID, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var secret string
	err := row.Scan(&u.TelegramID, &u.Username, &u.WalletPublicKey, &secret, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	u.WalletPrivateKey = domain.Secret(secret)
	return &u, nil
}
