package ledger

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/ImpertiantLoris/solmate-bot/internal/core/domain"
)

// fakeRPC scripts oracle responses and records invocations.
type fakeRPC struct {
	balance      uint64
	balanceErr   error
	balanceCalls int

	blockhash       solana.Hash
	lastValidHeight uint64
	blockhashErr    error

	airdropSig   solana.Signature
	airdropErr   error
	airdropCalls int

	sendSig solana.Signature
	sendErr error
	sentTx  *solana.Transaction

	// statuses is consumed one entry per GetSignatureStatuses call; nil
	// entries simulate "not yet visible".
	statuses    []*rpc.SignatureStatusesResult
	statusCalls int
}

func (f *fakeRPC) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	f.balanceCalls++
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return &rpc.GetBalanceResult{Value: f.balance}, nil
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if f.blockhashErr != nil {
		return nil, f.blockhashErr
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            f.blockhash,
			LastValidBlockHeight: f.lastValidHeight,
		},
	}, nil
}

func (f *fakeRPC) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error) {
	f.airdropCalls++
	if f.airdropErr != nil {
		return solana.Signature{}, f.airdropErr
	}
	return f.airdropSig, nil
}

func (f *fakeRPC) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	f.sentTx = tx
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return f.sendSig, nil
}

func (f *fakeRPC) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	var status *rpc.SignatureStatusesResult
	if f.statusCalls < len(f.statuses) {
		status = f.statuses[f.statusCalls]
	}
	f.statusCalls++
	return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{status}}, nil
}

func testGateway(client rpcClient) *Gateway {
	g := newGateway(client)
	g.confirmTimeout = 200 * time.Millisecond
	g.pollInterval = 10 * time.Millisecond
	return g
}

func confirmedStatus() *rpc.SignatureStatusesResult {
	return &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}
}

func TestGetBalance(t *testing.T) {
	wallet := solana.NewWallet()

	t.Run("passthrough", func(t *testing.T) {
		g := testGateway(&fakeRPC{balance: 42})
		got, err := g.GetBalance(context.Background(), wallet.PublicKey().String())
		if err != nil {
			t.Fatalf("GetBalance() error = %v", err)
		}
		if got != 42 {
			t.Errorf("GetBalance() = %d, want 42", got)
		}
	})

	t.Run("rpc failure wraps ErrLedgerQuery", func(t *testing.T) {
		g := testGateway(&fakeRPC{balanceErr: errors.New("boom")})
		_, err := g.GetBalance(context.Background(), wallet.PublicKey().String())
		if !errors.Is(err, domain.ErrLedgerQuery) {
			t.Errorf("GetBalance() error = %v, want ErrLedgerQuery", err)
		}
	})

	t.Run("malformed address", func(t *testing.T) {
		f := &fakeRPC{balance: 42}
		g := testGateway(f)
		_, err := g.GetBalance(context.Background(), "not-an-address")
		if !errors.Is(err, domain.ErrLedgerQuery) {
			t.Errorf("GetBalance() error = %v, want ErrLedgerQuery", err)
		}
		if f.balanceCalls != 0 {
			t.Errorf("oracle called %d times for malformed address, want 0", f.balanceCalls)
		}
	})
}

func TestFundWallet(t *testing.T) {
	wallet := solana.NewWallet()

	t.Run("confirmed after one poll", func(t *testing.T) {
		f := &fakeRPC{
			airdropSig: solana.Signature{1},
			balance:    domain.LamportsPerSOL,
			statuses:   []*rpc.SignatureStatusesResult{nil, confirmedStatus()},
		}
		g := testGateway(f)

		if !g.FundWallet(context.Background(), wallet.PublicKey().String()) {
			t.Fatal("FundWallet() = false, want true")
		}
		if f.airdropCalls != 1 {
			t.Errorf("airdrop requested %d times, want 1", f.airdropCalls)
		}
		if f.balanceCalls != 1 {
			t.Errorf("balance re-read %d times, want 1", f.balanceCalls)
		}
	})

	t.Run("faucet error is absorbed", func(t *testing.T) {
		f := &fakeRPC{airdropErr: errors.New("faucet dry")}
		g := testGateway(f)

		if g.FundWallet(context.Background(), wallet.PublicKey().String()) {
			t.Error("FundWallet() = true, want false")
		}
		if f.statusCalls != 0 {
			t.Errorf("status polled %d times after failed airdrop, want 0", f.statusCalls)
		}
	})

	t.Run("never confirms within bound", func(t *testing.T) {
		f := &fakeRPC{airdropSig: solana.Signature{1}}
		g := testGateway(f)

		if g.FundWallet(context.Background(), wallet.PublicKey().String()) {
			t.Error("FundWallet() = true for unconfirmed airdrop, want false")
		}
	})
}

func TestTransfer(t *testing.T) {
	sender := solana.NewWallet()
	recipient := solana.NewWallet()
	blockhash := solana.MustHashFromBase58("11111111111111111111111111111111")

	t.Run("signs, submits, confirms", func(t *testing.T) {
		f := &fakeRPC{
			blockhash:       blockhash,
			lastValidHeight: 500,
			sendSig:         solana.Signature{7},
			statuses:        []*rpc.SignatureStatusesResult{confirmedStatus()},
		}
		g := testGateway(f)

		secret := domain.Secret(sender.PrivateKey.String())
		sig, err := g.Transfer(context.Background(), secret, recipient.PublicKey().String(), 900_000)
		if err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		if sig != (solana.Signature{7}).String() {
			t.Errorf("Transfer() signature = %s", sig)
		}
		if f.sentTx == nil {
			t.Fatal("no transaction submitted")
		}
		if len(f.sentTx.Message.Instructions) != 1 {
			t.Errorf("submitted %d instructions, want 1", len(f.sentTx.Message.Instructions))
		}
		if !f.sentTx.Message.AccountKeys[0].Equals(sender.PublicKey()) {
			t.Errorf("fee payer = %s, want sender", f.sentTx.Message.AccountKeys[0])
		}
		if len(f.sentTx.Signatures) != 1 || f.sentTx.Signatures[0] == (solana.Signature{}) {
			t.Error("submitted transaction is not signed")
		}
	})

	t.Run("invalid secret", func(t *testing.T) {
		g := testGateway(&fakeRPC{})
		_, err := g.Transfer(context.Background(), domain.Secret("garbage"), recipient.PublicKey().String(), 1)
		if !errors.Is(err, domain.ErrBadRequest) {
			t.Errorf("Transfer() error = %v, want ErrBadRequest", err)
		}
	})

	t.Run("on-chain failure surfaces", func(t *testing.T) {
		f := &fakeRPC{
			blockhash: blockhash,
			sendSig:   solana.Signature{7},
			statuses: []*rpc.SignatureStatusesResult{
				{Err: map[string]interface{}{"InstructionError": []interface{}{}}},
			},
		}
		g := testGateway(f)

		secret := domain.Secret(sender.PrivateKey.String())
		_, err := g.Transfer(context.Background(), secret, recipient.PublicKey().String(), 1)
		if !errors.Is(err, domain.ErrLedgerQuery) {
			t.Errorf("Transfer() error = %v, want ErrLedgerQuery", err)
		}
	})
}

func TestSerializeUnsignedDeterminism(t *testing.T) {
	from := solana.MustPublicKeyFromBase58("AZCbpdwmGA1Knik5a5Mn1ervK7gr7VQbAS1Ke1fXe3jq")
	to := solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")
	blockhash := solana.MustHashFromBase58("11111111111111111111111111111111")

	build := func() string {
		tx, err := BuildTransferTx(from, to, 10_000_000, blockhash)
		if err != nil {
			t.Fatalf("BuildTransferTx() error = %v", err)
		}
		b64, err := SerializeUnsigned(tx)
		if err != nil {
			t.Fatalf("SerializeUnsigned() error = %v", err)
		}
		return b64
	}

	first := build()
	second := build()
	if first != second {
		t.Error("serialized output differs across identical builds")
	}

	raw, err := base64.StdEncoding.DecodeString(first)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}

	// One required signature, present as a zeroed 64-byte slot.
	if raw[0] != 1 {
		t.Fatalf("signature count = %d, want 1", raw[0])
	}
	for i := 1; i <= 64; i++ {
		if raw[i] != 0 {
			t.Fatal("signature slot is not zeroed")
		}
	}
}
