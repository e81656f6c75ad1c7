package ledger

import (
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// BuildTransferTx assembles a transaction containing exactly one system
// transfer instruction, bound to blockhash, with the sender as fee payer.
// Both the unsigned Action path and the custodial send path go through here
// so the two produce the same wire transaction.
func BuildTransferTx(from, to solana.PublicKey, lamports uint64, blockhash solana.Hash) (*solana.Transaction, error) {
	ix := system.NewTransferInstruction(lamports, from, to).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("assembling transaction: %w", err)
	}
	return tx, nil
}

// SerializeUnsigned encodes the transaction for transport without requiring
// or verifying any signatures. The signature slots demanded by the message
// header are emitted zeroed, matching what signing wallets expect to fill
// in, and making the output deterministic for a fixed blockhash.
func SerializeUnsigned(tx *solana.Transaction) (string, error) {
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serializing transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
