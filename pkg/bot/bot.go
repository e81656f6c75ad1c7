// Package bot implements the Telegram chat surface: wallet issuance on
// /start, balance reads, Blink link generation on /send, the custodial
// /sendnow path, and an optional AI-backed /ask command.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ImpertiantLoris/solmate-bot/internal/core/domain"
	"github.com/ImpertiantLoris/solmate-bot/internal/core/service"
	"github.com/ImpertiantLoris/solmate-bot/pkg/actions"
)

// Assistant answers free-form /ask questions. Optional; the command
// degrades with a notice when none is wired.
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Reply is one rendered chat response.
type Reply struct {
	Text string
	// DisableWebPagePreview suppresses Telegram's link unfurling, used for
	// replies that carry an action link.
	DisableWebPagePreview bool
}

// Bot maps chat commands onto the wallet service. It holds no per-chat
// state; every command is handled independently.
type Bot struct {
	wallets   *service.WalletService
	assistant Assistant
	blinkBase string
}

// New wires the command dispatcher. assistant may be nil.
func New(wallets *service.WalletService, assistant Assistant, blinkBaseURL string) *Bot {
	return &Bot{wallets: wallets, assistant: assistant, blinkBase: blinkBaseURL}
}

const helpText = `🤖 SolMate commands:

/start — create your wallet (funded with 1 devnet SOL)
/balance — show your balance
/send <amount> <address-or-@handle> — get a Blink link to sign in your own wallet
/sendnow <amount> <address-or-@handle> — send immediately from your SolMate wallet
/ask <question> — ask the assistant anything about Solana
/help — this message`

// Dispatch routes one inbound command to its handler and returns the
// rendered reply. Unknown commands get a help pointer.
func (b *Bot) Dispatch(ctx context.Context, userID int64, username, command, args string) Reply {
	switch command {
	case "start":
		return b.handleStart(ctx, userID, username)
	case "balance":
		return b.handleBalance(ctx, userID)
	case "send":
		return b.handleSend(ctx, args)
	case "sendnow":
		return b.handleSendNow(ctx, userID, args)
	case "ask":
		return b.handleAsk(ctx, args)
	case "help":
		return Reply{Text: helpText}
	default:
		return Reply{Text: "Unknown command. Try /help."}
	}
}

func (b *Bot) handleStart(ctx context.Context, userID int64, username string) Reply {
	res, err := b.wallets.IssueWallet(ctx, userID, username)
	if err != nil {
		log.Printf("❌ /start for %d: %v", userID, err)
		return Reply{Text: "⚠️ Could not set up your wallet right now. Try again in a moment."}
	}

	if !res.Created {
		return Reply{Text: fmt.Sprintf("👋 Welcome back! Your wallet:\n%s\n\nCheck /balance or /send to move SOL.", res.PublicKey)}
	}

	text := fmt.Sprintf("🪙 Wallet created!\nAddress: %s\n\n", res.PublicKey)
	if b.wallets.FundWallet(ctx, res.PublicKey) {
		text += "💸 Funded with 1 devnet SOL. Check /balance."
	} else {
		text += "⚠️ Faucet funding failed, so your wallet starts empty. The devnet faucet is rate limited; try /start again later."
	}
	return Reply{Text: text}
}

func (b *Bot) handleBalance(ctx context.Context, userID int64) Reply {
	lamports, err := b.wallets.Balance(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNoWallet):
		return Reply{Text: "You don't have a wallet yet. Send /start to create one."}
	case err != nil:
		log.Printf("❌ /balance for %d: %v", userID, err)
		return Reply{Text: "⚠️ Could not fetch your balance right now."}
	}
	return Reply{Text: fmt.Sprintf("💰 Balance: %.4f SOL", float64(lamports)/float64(domain.LamportsPerSOL))}
}

// handleSend emits an action link for the recipient to be paid from the
// sender's own wallet app. Nothing is submitted on-chain here.
func (b *Bot) handleSend(ctx context.Context, args string) Reply {
	amountStr, target, ok := splitSendArgs(args)
	if !ok {
		return Reply{Text: "Usage: /send <amount> <address-or-@handle>"}
	}

	if _, err := domain.ParseAmount(amountStr); err != nil {
		return Reply{Text: fmt.Sprintf("⚠️ %q is not a valid SOL amount.", amountStr)}
	}

	address, err := b.wallets.ResolveRecipient(ctx, target)
	switch {
	case errors.Is(err, domain.ErrRecipientNotFound):
		return Reply{Text: fmt.Sprintf("⚠️ %s doesn't have a wallet here yet. They can create one with /start.", target)}
	case err != nil:
		log.Printf("❌ /send resolve %q: %v", target, err)
		return Reply{Text: "⚠️ Could not look up that recipient right now."}
	}

	link := actions.SendActionURL(b.blinkBase, address, amountStr)
	return Reply{
		Text: fmt.Sprintf("💸 Send %s SOL to %s\nOpen this link and sign in your wallet:\n%s",
			amountStr, target, link),
		DisableWebPagePreview: true,
	}
}

// handleSendNow is the custodial path: the bot signs with the stored key
// and submits immediately.
func (b *Bot) handleSendNow(ctx context.Context, userID int64, args string) Reply {
	amountStr, target, ok := splitSendArgs(args)
	if !ok {
		return Reply{Text: "Usage: /sendnow <amount> <address-or-@handle>"}
	}

	amount, err := domain.ParseAmount(amountStr)
	if err != nil {
		return Reply{Text: fmt.Sprintf("⚠️ %q is not a valid SOL amount.", amountStr)}
	}

	sender, err := b.wallets.Sender(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNoWallet):
		return Reply{Text: "You don't have a wallet yet. Send /start to create one."}
	case err != nil:
		log.Printf("❌ /sendnow sender lookup for %d: %v", userID, err)
		return Reply{Text: "⚠️ Could not load your wallet right now."}
	}

	address, err := b.wallets.ResolveRecipient(ctx, target)
	switch {
	case errors.Is(err, domain.ErrRecipientNotFound):
		return Reply{Text: fmt.Sprintf("⚠️ %s doesn't have a wallet here yet.", target)}
	case err != nil:
		log.Printf("❌ /sendnow resolve %q: %v", target, err)
		return Reply{Text: "⚠️ Could not look up that recipient right now."}
	}

	sig, err := b.wallets.SendSOL(ctx, sender.WalletPrivateKey, address, amount)
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return Reply{Text: "⚠️ Not enough SOL to cover the transfer plus network fees. Check /balance."}
	case errors.Is(err, domain.ErrBadRequest):
		return Reply{Text: fmt.Sprintf("⚠️ Can't send that: %v", err)}
	case err != nil:
		log.Printf("❌ /sendnow transfer for %d: %v", userID, err)
		return Reply{Text: "❌ Transfer failed. Nothing was sent."}
	}

	return Reply{Text: fmt.Sprintf("✅ Sent %s SOL to %s\nSignature: %s", amountStr, target, sig)}
}

func (b *Bot) handleAsk(ctx context.Context, args string) Reply {
	if b.assistant == nil {
		return Reply{Text: "🤖 The assistant is not configured on this deployment."}
	}
	question := strings.TrimSpace(args)
	if question == "" {
		return Reply{Text: "Usage: /ask <question>"}
	}

	answer, err := b.assistant.Ask(ctx, question)
	if err != nil {
		log.Printf("❌ /ask: %v", err)
		return Reply{Text: "⚠️ The assistant is unavailable right now."}
	}
	return Reply{Text: answer}
}

// splitSendArgs parses "<amount> <target>" argument strings.
func splitSendArgs(args string) (amount, target string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}
