package domain

import "errors"

// Error taxonomy. Every public operation boundary (chat command handler,
// HTTP route) classifies against these sentinels with errors.Is and converts
// to a user-facing message; none of them may escape the serving process.
var (
	// ErrBadRequest marks malformed or missing caller input. Always
	// recoverable locally; surfaced as a 400 or a usage hint.
	ErrBadRequest = errors.New("bad request")

	// ErrRecipientNotFound is returned when a handle resolves to no record,
	// or to a record without an issued wallet.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrNoWallet is the sender-side counterpart: the calling identity has
	// no issued wallet yet.
	ErrNoWallet = errors.New("no wallet issued")

	// ErrStorage marks identity-store failures. Surfaced as a user-facing
	// message, logged server-side; issuance must never report success past it.
	ErrStorage = errors.New("storage error")

	// ErrLedgerQuery marks RPC oracle failures. Surfaced generically,
	// never exposing internal detail.
	ErrLedgerQuery = errors.New("ledger query failed")

	// ErrInsufficientFunds is the business-rule rejection raised before any
	// submission attempt. Always surfaced verbatim.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
