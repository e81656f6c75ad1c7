// Package actions implements the Solana Actions ("Blink") protocol surface:
// a GET endpoint advertising a machine-readable description of the transfer
// action, and a POST endpoint that builds the matching unsigned transaction
// for a wallet to sign. The server never sees a signature; custody stays
// with the wallet application.
package actions

// Descriptor is the self-describing action metadata returned by the GET
// step. Wallets render it and follow Links.Actions to invoke the action.
type Descriptor struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Links       ActionLinks  `json:"links"`
	Input       []InputField `json:"input,omitempty"`
}

// ActionLinks wraps the invocable actions of a Descriptor.
type ActionLinks struct {
	Actions []LinkedAction `json:"actions"`
}

// LinkedAction is one invocable action: a button label and the URL the
// wallet POSTs to.
type LinkedAction struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// InputField describes one parameter a wallet should collect from the user
// before invoking the action.
type InputField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// PostRequest is the POST step's body: the public key of the account that
// will sign and pay fees.
type PostRequest struct {
	Account string `json:"account"`
}

// PostResponse carries the unsigned transaction envelope back to the wallet.
type PostResponse struct {
	// Transaction is the base64-encoded wire transaction with empty
	// signature slots.
	Transaction string `json:"transaction"`
	// Message is a human-readable summary shown before signing.
	Message string `json:"message"`
	// LastValidBlockHeight is the expiry horizon of the blockhash the
	// transaction is bound to.
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// ErrorResponse is the uniform error body. Internal detail never leaks
// through it.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Manifest is the well-known discovery document advertising the service and
// its transfer action to wallets.
type Manifest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	Actions     []ManifestAction `json:"actions"`
}

// ManifestAction is one advertised action in the Manifest.
type ManifestAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}
