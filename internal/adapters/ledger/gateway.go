package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/ImpertiantLoris/solmate-bot/internal/core/domain"
)

const (
	// defaultConfirmTimeout bounds every confirmation wait. A blockhash is
	// only valid for roughly 60-90 seconds, so waiting longer is pointless.
	defaultConfirmTimeout = 60 * time.Second
	// defaultPollInterval is how often the signature status is re-checked
	// while waiting for confirmation.
	defaultPollInterval = 2 * time.Second
)

// rpcClient is the subset of the solana-go RPC client the gateway uses.
// Narrowing the dependency keeps the oracle mockable in tests.
type rpcClient interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Gateway is the thin adapter over the Solana JSON-RPC oracle: balance
// queries, blockhash retrieval, faucet requests, and transaction submission.
// It performs every operation exactly once; there is no retry policy.
type Gateway struct {
	client         rpcClient
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// NewGateway creates a gateway against the given RPC endpoint.
func NewGateway(rpcURL string) *Gateway {
	return newGateway(rpc.New(rpcURL))
}

func newGateway(client rpcClient) *Gateway {
	return &Gateway{
		client:         client,
		confirmTimeout: defaultConfirmTimeout,
		pollInterval:   defaultPollInterval,
	}
}

// GetBalance returns the confirmed balance of pubkey in lamports.
func (g *Gateway) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	account, err := solana.PublicKeyFromBase58(pubkey)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid address: %v", domain.ErrLedgerQuery, err)
	}

	out, err := g.client.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrLedgerQuery, err)
	}
	return out.Value, nil
}

// LatestBlockhash fetches a fresh blockhash and its validity horizon at
// confirmed commitment.
func (g *Gateway) LatestBlockhash(ctx context.Context) (string, uint64, error) {
	out, err := g.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrLedgerQuery, err)
	}
	return out.Value.Blockhash.String(), out.Value.LastValidBlockHeight, nil
}

// FundWallet requests a 1 SOL devnet airdrop for pubkey and waits for it to
// confirm. Faucets are unreliable, so this is strictly best-effort: any
// error, timeout, or unconfirmed state returns false and never an error.
func (g *Gateway) FundWallet(ctx context.Context, pubkey string) bool {
	account, err := solana.PublicKeyFromBase58(pubkey)
	if err != nil {
		log.Printf("❌ Airdrop skipped, invalid address: %v", err)
		return false
	}

	log.Printf("💸 Requesting 1 SOL from faucet for %s...", pubkey)
	sig, err := g.client.RequestAirdrop(ctx, account, domain.LamportsPerSOL, rpc.CommitmentConfirmed)
	if err != nil {
		log.Printf("❌ Airdrop request failed: %v", err)
		return false
	}

	log.Printf("⏳ Waiting for airdrop confirmation...")
	if err := g.waitForConfirmation(ctx, sig); err != nil {
		log.Printf("❌ Airdrop not confirmed: %v", err)
		return false
	}

	balance, err := g.GetBalance(ctx, pubkey)
	if err != nil {
		log.Printf("⚠️ Airdrop confirmed but balance re-read failed: %v", err)
		return false
	}

	log.Printf("✅ Airdrop confirmed! Current balance: %.4f SOL", float64(balance)/domain.LamportsPerSOL)
	return true
}

// Transfer builds, signs, and submits a single-instruction SOL transfer from
// the holder of senderSecret, then waits for confirmation. The funds
// sufficiency check belongs to the caller; by the time Transfer runs the
// intent has already been validated.
func (g *Gateway) Transfer(ctx context.Context, senderSecret domain.Secret, recipient string, lamports uint64) (string, error) {
	signer, err := solana.PrivateKeyFromBase58(senderSecret.Reveal())
	if err != nil {
		return "", fmt.Errorf("%w: invalid sender key", domain.ErrBadRequest)
	}

	to, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return "", fmt.Errorf("%w: invalid recipient address", domain.ErrBadRequest)
	}

	blockhashOut, err := g.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerQuery, err)
	}

	tx, err := BuildTransferTx(signer.PublicKey(), to, lamports, blockhashOut.Value.Blockhash)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerQuery, err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(signer.PublicKey()) {
			return &signer
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("%w: signing failed: %v", domain.ErrLedgerQuery, err)
	}

	sig, err := g.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerQuery, err)
	}

	if err := g.waitForConfirmation(ctx, sig); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerQuery, err)
	}

	log.Printf("✅ Transfer confirmed | Signature: %s", sig)
	return sig.String(), nil
}

// waitForConfirmation polls the signature status until it reaches confirmed
// (or finalized) commitment. The wait is bounded by the gateway's confirm
// timeout on top of whatever deadline the caller's context already carries.
func (g *Gateway) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation wait expired: %w", ctx.Err())
		case <-ticker.C:
			out, err := g.client.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				// Transient status query failures are absorbed; the bound
				// on the wait comes from the context.
				continue
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed on chain: %v", status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
	}
}
