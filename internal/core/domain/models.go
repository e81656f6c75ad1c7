package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// LamportsPerSOL is the number of minimal units in one SOL.
const LamportsPerSOL = 1_000_000_000

// FeeCushionLamports is the fixed fee reserve checked before a custodial
// transfer is submitted. Matches the devnet base fee for a single-signature
// transaction.
const FeeCushionLamports = 5_000

// User is the identity record mapping a Telegram identity to a custodied
// Solana wallet. There is at most one record per TelegramID, and
// WalletPublicKey is set exactly once; the store must never regress it.
type User struct {
	TelegramID       int64     `json:"telegram_id"`
	Username         string    `json:"username,omitempty"`
	WalletPublicKey  string    `json:"wallet_public_key"`
	WalletPrivateKey Secret    `json:"-"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// HasWallet reports whether the record carries an issued wallet.
func (u *User) HasWallet() bool {
	return u != nil && u.WalletPublicKey != ""
}

// IssueResult is the outcome of a wallet issuance request.
type IssueResult struct {
	PublicKey string
	// Created is false when the identity already had a wallet and the
	// existing public key was returned instead.
	Created bool
}

// TransferIntent is a validated request to move SOL between two addresses.
// Construct amounts through ParseAmount so no unchecked value travels
// downstream.
type TransferIntent struct {
	Sender    string
	Recipient string
	AmountSOL float64
}

// Lamports converts the SOL amount to minimal units, truncating toward zero.
// Fractional lamports are not representable; the truncation is intentional.
func (t TransferIntent) Lamports() uint64 {
	return SOLToLamports(t.AmountSOL)
}

// SOLToLamports converts a SOL amount to lamports with floor semantics.
func SOLToLamports(amount float64) uint64 {
	return uint64(math.Floor(amount * LamportsPerSOL))
}

// ParseAmount is the single parse-and-validate funnel for user-supplied
// amounts. It returns ErrBadRequest for non-numeric, non-positive, or
// sub-lamport values.
func ParseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q is not a number", ErrBadRequest, s)
	}
	if !(amount > 0) {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrBadRequest)
	}
	if SOLToLamports(amount) == 0 {
		return 0, fmt.Errorf("%w: amount %s is below one lamport", ErrBadRequest, s)
	}
	return amount, nil
}

// UnsignedTransfer is the Transaction Builder's output: a serialized,
// signature-free transaction bound to a specific blockhash. It becomes
// useless once the blockhash expires, even if never submitted.
type UnsignedTransfer struct {
	// TransactionBase64 is the wire transaction with zeroed signature slots.
	TransactionBase64 string
	// Blockhash the transaction is bound to.
	Blockhash string
	// LastValidBlockHeight is the last ledger height at which the blockhash
	// is still accepted.
	LastValidBlockHeight uint64
	// Message is a human-readable summary for the signing wallet.
	Message string
}
