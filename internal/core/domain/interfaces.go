package domain

import "context"

// LedgerGateway defines the operations the system needs from the Solana RPC
// oracle. All methods are single-attempt; confirmation waits are bounded by
// the supplied context.
type LedgerGateway interface {
	// GetBalance returns the confirmed balance of pubkey in lamports.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// FundWallet requests a 1 SOL faucet credit for pubkey and waits for
	// confirmation. Best effort: any failure returns false, never an error.
	FundWallet(ctx context.Context, pubkey string) bool

	// LatestBlockhash returns a fresh blockhash and the last block height at
	// which it remains valid, at confirmed commitment.
	LatestBlockhash(ctx context.Context) (blockhash string, lastValidBlockHeight uint64, err error)

	// Transfer signs and submits a single-instruction transfer from the
	// holder of senderSecret, waits for confirmation, and returns the
	// submission signature.
	Transfer(ctx context.Context, senderSecret Secret, recipient string, lamports uint64) (signature string, err error)
}

// UserStore is the custody store adapter: record lookups keyed by Telegram
// identity or handle, and an atomic upsert keyed on the Telegram identity.
type UserStore interface {
	// GetByTelegramID returns the record for id, or (nil, nil) when absent.
	GetByTelegramID(ctx context.Context, id int64) (*User, error)

	// GetByUsername returns the record whose handle matches exactly
	// (case-sensitive), or (nil, nil) when absent.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Upsert inserts or updates the record keyed on TelegramID. Conflict
	// resolution overwrites non-key fields but must not regress an
	// already-set wallet public key.
	Upsert(ctx context.Context, user *User) error
}
