package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/gagliardetto/solana-go"

	"github.com/ImpertiantLoris/solmate-bot/internal/adapters/ledger"
	"github.com/ImpertiantLoris/solmate-bot/internal/core/domain"
)

const (
	// DefaultIcon is shown by wallets next to the action.
	DefaultIcon = "https://cryptologos.cc/logos/solana-sol-logo.png"

	serviceName        = "SolMate Blink Server"
	serviceDescription = "Create a SOL transfer and sign it in your wallet"

	// ManifestPath is the well-known route wallets probe for discovery.
	ManifestPath = "/.well-known/solana/action.json"
)

// BlockhashSource provides the checkpoint the transaction builder binds
// each transaction to. Satisfied by the ledger gateway; mocked in tests.
type BlockhashSource interface {
	LatestBlockhash(ctx context.Context) (blockhash string, lastValidBlockHeight uint64, err error)
}

// Handler serves the Action protocol routes.
type Handler struct {
	baseURL string
	ledger  BlockhashSource
}

// NewHandler creates a handler advertising links under baseURL.
func NewHandler(baseURL string, source BlockhashSource) *Handler {
	return &Handler{baseURL: baseURL, ledger: source}
}

// Routes returns the action server's mux: the two-step send action, the
// discovery manifest, and a liveness root.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/actions/send", h.handleSend)
	mux.HandleFunc(ManifestPath, h.handleManifest)
	mux.HandleFunc("/", h.handleRoot)
	return mux
}

// DescribeAction builds the action descriptor for a recipient and amount.
// Pure function of its inputs plus the configured base URL; both parameters
// may be empty, in which case the descriptor degrades to a generic probe
// response with empty link parameters.
func (h *Handler) DescribeAction(to, amount string) Descriptor {
	label := "Send SOL"
	if amount != "" {
		label = fmt.Sprintf("Send %s SOL", amount)
	}

	d := Descriptor{
		Title:       "Send SOL",
		Description: serviceDescription,
		Icon:        DefaultIcon,
		Links: ActionLinks{
			Actions: []LinkedAction{{Label: label, Href: h.SendActionURL(to, amount)}},
		},
	}

	if to == "" || amount == "" {
		d.Input = []InputField{
			{Name: "to", Label: "Recipient address", Required: true},
			{Name: "amount", Label: "Amount in SOL", Required: true},
		}
	}
	return d
}

// SendActionURL builds the invocation link with both parameters
// percent-encoded.
func (h *Handler) SendActionURL(to, amount string) string {
	return SendActionURL(h.baseURL, to, amount)
}

// SendActionURL builds an invocation link against an arbitrary base URL.
// Shared with the chat surface, which emits the same link in /send replies.
func SendActionURL(baseURL, to, amount string) string {
	return fmt.Sprintf("%s/actions/send?to=%s&amount=%s",
		baseURL, url.QueryEscape(to), url.QueryEscape(amount))
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		h.getSend(w, r)
	case http.MethodPost:
		h.postSend(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// getSend is the discovery step: it advertises the action without touching
// the ledger or the store.
func (h *Handler) getSend(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	amount := r.URL.Query().Get("amount")
	writeJSON(w, http.StatusOK, h.DescribeAction(to, amount))
}

// postSend is the build step: it validates the parameters, binds a transfer
// to a fresh blockhash, and returns the serialized unsigned transaction.
func (h *Handler) postSend(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	amountStr := r.URL.Query().Get("amount")

	var body PostRequest
	if r.Body != nil {
		// A missing or malformed body falls through to the presence check.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if to == "" || amountStr == "" || body.Account == "" {
		writeError(w, http.StatusBadRequest, "Missing to, amount, or account")
		return
	}

	from, err := solana.PublicKeyFromBase58(body.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account address")
		return
	}
	toKey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipient address")
		return
	}
	amount, err := domain.ParseAmount(amountStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	blockhashStr, lastValidHeight, err := h.ledger.LatestBlockhash(r.Context())
	if err != nil {
		log.Printf("❌ POST /actions/send blockhash fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	blockhash, err := solana.HashFromBase58(blockhashStr)
	if err != nil {
		log.Printf("❌ POST /actions/send bad blockhash from oracle: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	lamports := domain.SOLToLamports(amount)
	tx, err := ledger.BuildTransferTx(from, toKey, lamports, blockhash)
	if err != nil {
		log.Printf("❌ POST /actions/send build: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	serialized, err := ledger.SerializeUnsigned(tx)
	if err != nil {
		log.Printf("❌ POST /actions/send serialize: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, PostResponse{
		Transaction:          serialized,
		Message:              fmt.Sprintf("Send %s SOL to %s", amountStr, to),
		LastValidBlockHeight: lastValidHeight,
	})
}

// handleManifest serves the static discovery document for wallet-side
// auto-discovery.
func (h *Handler) handleManifest(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, Manifest{
		Name:        serviceName,
		Description: "Execute Solana transfers from Telegram via SolMate",
		Icon:        DefaultIcon,
		Actions: []ManifestAction{
			{Type: "transfer", Title: "Send SOL", URL: h.baseURL + "/actions/send"},
		},
	})
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "🟢 SolMate Blink Server running...")
}

// setCORS allows arbitrary origins. Browser-embedded wallets cannot consume
// the protocol at all without it.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
