package main

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/ImpertiantLoris/solmate-bot/internal/adapters/ledger"
	"github.com/ImpertiantLoris/solmate-bot/internal/adapters/store"
	"github.com/ImpertiantLoris/solmate-bot/internal/cache"
	"github.com/ImpertiantLoris/solmate-bot/internal/config"
	"github.com/ImpertiantLoris/solmate-bot/internal/core/domain"
	"github.com/ImpertiantLoris/solmate-bot/internal/core/service"
	"github.com/ImpertiantLoris/solmate-bot/pkg/assistant"
	"github.com/ImpertiantLoris/solmate-bot/pkg/bot"
	"github.com/ImpertiantLoris/solmate-bot/pkg/version"
)

func main() {
	_ = godotenv.Load() // Load .env if present

	cfg := config.Load()
	if err := cfg.RequireBot(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	log.Printf("🚀 %s", version.GetBuildInfo())

	pg, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to identity store: %v", err)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("❌ Failed to prepare schema: %v", err)
	}

	users := wrapWithCache(pg, cfg)
	gateway := ledger.NewGateway(cfg.RPCURL)
	wallets := service.NewWalletService(users, gateway)

	var asst bot.Assistant
	if client := assistant.New(cfg.OpenAIKey); client != nil {
		asst = client
		log.Printf("🤖 Assistant enabled")
	} else {
		log.Printf("⚠️ OPENAI_API_KEY not set, /ask is disabled")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("❌ Failed to authenticate with Telegram: %v", err)
	}

	runner := bot.NewRunner(api, bot.New(wallets, asst, cfg.BlinkServerURL), bot.RunnerConfig{
		WebhookURL:    cfg.WebhookURL,
		WebhookSecret: cfg.WebhookSecret,
		ListenAddr:    fmt.Sprintf(":%d", cfg.Port),
	})

	if err := runner.Run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// wrapWithCache decorates the store with a Redis read-through cache when
// one is configured. Cache failures never take the bot down; it just runs
// uncached.
func wrapWithCache(pg *store.PostgresStore, cfg *config.Config) domain.UserStore {
	if cfg.RedisAddr == "" {
		return pg
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Address:   cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: "solmate:",
	})
	if err != nil {
		log.Printf("⚠️ Redis unavailable, running without cache: %v", err)
		return pg
	}

	log.Printf("🗄️ Handle cache enabled at %s", cfg.RedisAddr)
	return store.NewCachedStore(pg, redisCache)
}
