package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RPC_URL", "")
	t.Setenv("BLINK_SERVER_URL", "")
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("WEBHOOK_SECRET", "")

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.RPCURL != DefaultRPCURL {
		t.Errorf("RPCURL = %q, want devnet default", cfg.RPCURL)
	}
	if cfg.BlinkServerURL != "http://localhost:3000" {
		t.Errorf("BlinkServerURL = %q, want localhost fallback", cfg.BlinkServerURL)
	}
	if cfg.WebhookSecret == "" {
		t.Error("WebhookSecret should be generated when unset")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RPC_URL", "https://rpc.example.com")
	t.Setenv("BLINK_SERVER_URL", "https://blink.example.com")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/solmate")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("WEBHOOK_SECRET", "fixed-secret")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.RPCURL != "https://rpc.example.com" {
		t.Errorf("RPCURL = %q", cfg.RPCURL)
	}
	if cfg.BlinkServerURL != "https://blink.example.com" {
		t.Errorf("BlinkServerURL = %q", cfg.BlinkServerURL)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.RedisDB)
	}
	if cfg.WebhookSecret != "fixed-secret" {
		t.Errorf("WebhookSecret = %q", cfg.WebhookSecret)
	}
}

func TestRequireBot(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing token",
			cfg:     Config{DatabaseURL: "postgres://x"},
			wantErr: "BOT_TOKEN",
		},
		{
			name:    "missing database",
			cfg:     Config{BotToken: "123:abc"},
			wantErr: "DATABASE_URL",
		},
		{
			name: "complete",
			cfg:  Config{BotToken: "123:abc", DatabaseURL: "postgres://x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.RequireBot()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("RequireBot() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("RequireBot() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
