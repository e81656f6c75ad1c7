package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/ImpertiantLoris/solmate-bot/internal/core/domain"
)

// HandlePrefix marks a send target as a display-handle reference rather
// than a raw address.
const HandlePrefix = "@"

// WalletService owns wallet issuance, recipient resolution, balance reads,
// and the custodial transfer path. It holds no mutable state of its own;
// the injected store is the system of record.
type WalletService struct {
	store   domain.UserStore
	gateway domain.LedgerGateway
}

// NewWalletService wires the service to its store and ledger gateway.
func NewWalletService(store domain.UserStore, gateway domain.LedgerGateway) *WalletService {
	return &WalletService{store: store, gateway: gateway}
}

// IssueWallet returns the identity's wallet, generating and persisting a new
// keypair on first contact. Issuance is idempotent: an identity that already
// holds a wallet gets the same public key back with Created=false, and no
// secret material is ever regenerated or disclosed.
//
// Known gap, kept from the observed design: two concurrent first-time calls
// for the same identity can both generate keypairs; the store keeps the
// first-written one and the loser's key is discarded after this function has
// already returned it.
func (s *WalletService) IssueWallet(ctx context.Context, telegramID int64, displayName string) (*domain.IssueResult, error) {
	existing, err := s.store.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if existing.HasWallet() {
		return &domain.IssueResult{PublicKey: existing.WalletPublicKey, Created: false}, nil
	}

	wallet := solana.NewWallet()
	user := &domain.User{
		TelegramID:       telegramID,
		Username:         displayName,
		WalletPublicKey:  wallet.PublicKey().String(),
		WalletPrivateKey: domain.Secret(wallet.PrivateKey.String()),
	}

	if err := s.store.Upsert(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("🪙 Issued wallet %s for telegram id %d", user.WalletPublicKey, telegramID)
	return &domain.IssueResult{PublicKey: user.WalletPublicKey, Created: true}, nil
}

// FundWallet requests best-effort faucet funding for pubkey. The boolean is
// the complete outcome; funding failure never propagates as an error.
func (s *WalletService) FundWallet(ctx context.Context, pubkey string) bool {
	return s.gateway.FundWallet(ctx, pubkey)
}

// Balance returns the identity's confirmed balance in lamports, or
// ErrNoWallet when the identity has no issued wallet.
func (s *WalletService) Balance(ctx context.Context, telegramID int64) (uint64, error) {
	user, err := s.store.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return 0, err
	}
	if !user.HasWallet() {
		return 0, domain.ErrNoWallet
	}
	return s.gateway.GetBalance(ctx, user.WalletPublicKey)
}

// Sender returns the identity's full record for the custodial send path, or
// ErrNoWallet when none exists.
func (s *WalletService) Sender(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.store.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if !user.HasWallet() {
		return nil, domain.ErrNoWallet
	}
	return user, nil
}

// ResolveRecipient turns a send target into a ledger address. A token with
// the handle prefix is looked up in the store (case-sensitive exact match);
// anything else is returned verbatim — malformed addresses are deferred to
// the transaction builder so the error surfaces at the point of actual use.
func (s *WalletService) ResolveRecipient(ctx context.Context, token string) (string, error) {
	if !strings.HasPrefix(token, HandlePrefix) {
		return token, nil
	}

	handle := strings.TrimPrefix(token, HandlePrefix)
	user, err := s.store.GetByUsername(ctx, handle)
	if err != nil {
		return "", err
	}
	if !user.HasWallet() {
		return "", fmt.Errorf("%w: no wallet for @%s", domain.ErrRecipientNotFound, handle)
	}
	return user.WalletPublicKey, nil
}

// SendSOL executes the custodial transfer path: the system holds the
// sender's key and submits the transaction itself. Preconditions are checked
// in order, each a distinct error, and funds sufficiency (amount plus the
// fixed fee cushion) is verified before any submission attempt.
func (s *WalletService) SendSOL(ctx context.Context, senderSecret domain.Secret, recipient string, amountSOL float64) (string, error) {
	if senderSecret.IsZero() {
		return "", fmt.Errorf("%w: sender private key missing", domain.ErrBadRequest)
	}
	if recipient == "" {
		return "", fmt.Errorf("%w: recipient address missing", domain.ErrBadRequest)
	}
	if !(amountSOL > 0) {
		return "", fmt.Errorf("%w: amount must be greater than zero", domain.ErrBadRequest)
	}

	signer, err := solana.PrivateKeyFromBase58(senderSecret.Reveal())
	if err != nil {
		return "", fmt.Errorf("%w: invalid sender key", domain.ErrBadRequest)
	}

	lamports := domain.SOLToLamports(amountSOL)
	balance, err := s.gateway.GetBalance(ctx, signer.PublicKey().String())
	if err != nil {
		return "", err
	}
	if balance < lamports+domain.FeeCushionLamports {
		return "", fmt.Errorf("%w: balance %d lamports, need %d plus %d fee cushion",
			domain.ErrInsufficientFunds, balance, lamports, domain.FeeCushionLamports)
	}

	return s.gateway.Transfer(ctx, senderSecret, recipient, lamports)
}
