// The blink-server binary serves the Solana Actions protocol on its own:
// action discovery, unsigned transaction building, and the well-known
// manifest. It shares the ledger gateway with the bot but needs neither the
// identity store nor a Telegram token.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ImpertiantLoris/solmate-bot/internal/adapters/ledger"
	"github.com/ImpertiantLoris/solmate-bot/internal/config"
	"github.com/ImpertiantLoris/solmate-bot/pkg/actions"
	"github.com/ImpertiantLoris/solmate-bot/pkg/version"
)

func main() {
	_ = godotenv.Load() // Load .env if present

	cfg := config.Load()

	log.Printf("🚀 %s (blink server)", version.GetBuildInfo())

	gateway := ledger.NewGateway(cfg.RPCURL)
	handler := actions.NewHandler(cfg.BlinkServerURL, gateway)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler.Routes(),
	}

	go func() {
		log.Printf("🌐 Blink server listening on %s (public base %s)", server.Addr, cfg.BlinkServerURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Blink server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("📡 Received interrupt signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Error during shutdown: %v", err)
	}
	log.Println("✅ Blink server stopped")
}
