package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
)

// DefaultRPCURL is the public Solana devnet endpoint used when RPC_URL is
// not configured.
const DefaultRPCURL = "https://api.devnet.solana.com"

// Config holds process configuration loaded from environment variables.
type Config struct {
	// RPCURL is the Solana JSON-RPC endpoint.
	RPCURL string
	// BlinkServerURL is the public base URL of the action server, used to
	// build invocation links. Defaults to a localhost URL on Port.
	BlinkServerURL string
	// BotToken authenticates against the Telegram Bot API.
	BotToken string
	// Port is the HTTP listen port.
	Port int
	// DatabaseURL is the Postgres connection string for the identity store.
	DatabaseURL string

	// Optional Redis cache in front of the identity store. Disabled when
	// RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// OpenAIKey enables the /ask assistant command. Optional.
	OpenAIKey string

	// WebhookURL is the public base URL Telegram delivers updates to. When
	// empty the bot falls back to long polling.
	WebhookURL string
	// WebhookSecret is the unguessable path segment of the Telegram webhook
	// route. Randomly generated per process when unset.
	WebhookSecret string
}

// Load reads configuration from the environment. Every option has a
// documented fallback; RequireBot and RequireStore let each entry point
// declare which pieces it cannot run without.
func Load() *Config {
	port := 3000
	if p := os.Getenv("PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			port = parsed
		}
	}

	rpcURL := os.Getenv("RPC_URL")
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}

	blinkURL := os.Getenv("BLINK_SERVER_URL")
	if blinkURL == "" {
		blinkURL = fmt.Sprintf("http://localhost:%d", port)
	}

	redisDB := 0
	if d := os.Getenv("REDIS_DB"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil {
			redisDB = parsed
		}
	}

	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" {
		secret = randomSecret()
	}

	return &Config{
		RPCURL:         rpcURL,
		BlinkServerURL: blinkURL,
		BotToken:       os.Getenv("BOT_TOKEN"),
		Port:           port,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		WebhookSecret:  secret,
	}
}

// RequireBot validates the fields the bot process cannot run without.
func (c *Config) RequireBot() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN environment variable is required")
	}
	return c.RequireStore()
}

// RequireStore validates the fields any store-backed process needs.
func (c *Config) RequireStore() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return nil
}

func randomSecret() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has bigger problems; fall
		// back to a fixed marker rather than crash at config time.
		return "webhook"
	}
	return hex.EncodeToString(buf)
}
