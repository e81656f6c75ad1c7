package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// commandTimeout bounds a single command end to end, including the
// confirmation waits of /start funding and /sendnow.
const commandTimeout = 90 * time.Second

// RunnerConfig configures the transport between Telegram and the
// dispatcher.
type RunnerConfig struct {
	// WebhookURL is the public base URL Telegram should deliver updates
	// to. Empty means long polling.
	WebhookURL string
	// WebhookSecret is the unguessable path segment of the webhook route.
	WebhookSecret string
	// ListenAddr is the embedded HTTP listener address, e.g. ":3000".
	ListenAddr string
}

// Runner drives the dispatcher against the Telegram API, via webhook when
// a public URL is configured and long polling otherwise.
type Runner struct {
	api    *tgbotapi.BotAPI
	bot    *Bot
	config RunnerConfig

	server  *http.Server
	running bool
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner wires an authenticated Telegram client to the dispatcher.
func NewRunner(api *tgbotapi.BotAPI, bot *Bot, config RunnerConfig) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		api:    api,
		bot:    bot,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins receiving updates. Webhook mode also starts the embedded
// HTTP listener; polling mode drops any previously registered webhook so
// getUpdates is allowed again.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("bot is already running")
	}

	log.Printf("🚀 Starting SolMate bot as @%s", r.api.Self.UserName)

	if r.config.WebhookURL != "" {
		if err := r.startWebhook(); err != nil {
			return err
		}
	} else {
		if err := r.startPolling(); err != nil {
			return err
		}
	}

	r.running = true
	log.Printf("✅ Bot started")
	return nil
}

func (r *Runner) startWebhook() error {
	path := "/webhook/" + r.config.WebhookSecret

	wh, err := tgbotapi.NewWebhook(r.config.WebhookURL + path)
	if err != nil {
		return fmt.Errorf("building webhook config: %w", err)
	}
	if _, err := r.api.Request(wh); err != nil {
		return fmt.Errorf("registering webhook: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		update, err := r.api.HandleUpdate(req)
		if err != nil {
			log.Printf("⚠️ Dropping malformed webhook update: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// Telegram retries undelivered updates; acknowledge first and
		// handle asynchronously so a slow confirmation wait cannot cause
		// a redelivery.
		w.WriteHeader(http.StatusOK)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.process(*update)
		}()
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		fmt.Fprintln(w, "🟢 SolMate bot running...")
	})

	r.server = &http.Server{Addr: r.config.ListenAddr, Handler: mux}
	go func() {
		log.Printf("🌐 Webhook listener on %s", r.config.ListenAddr)
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Webhook listener: %v", err)
		}
	}()
	return nil
}

func (r *Runner) startPolling() error {
	if _, err := r.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("clearing webhook before polling: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := r.api.GetUpdatesChan(u)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		log.Printf("📡 Long polling for updates")
		for {
			select {
			case <-r.ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				r.process(update)
			}
		}
	}()
	return nil
}

// process handles one update: command messages are dispatched, everything
// else is ignored.
func (r *Runner) process(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || !msg.IsCommand() {
		return
	}

	ctx, cancel := context.WithTimeout(r.ctx, commandTimeout)
	defer cancel()

	reply := r.bot.Dispatch(ctx, msg.From.ID, msg.From.UserName, msg.Command(), msg.CommandArguments())
	if reply.Text == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	out.DisableWebPagePreview = reply.DisableWebPagePreview
	if _, err := r.api.Send(out); err != nil {
		log.Printf("⚠️ Failed to send reply to chat %d: %v", msg.Chat.ID, err)
	}
}

// Stop shuts the runner down and waits for in-flight commands to finish.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}

	log.Printf("🛑 Stopping bot")
	r.running = false
	r.cancel()
	r.api.StopReceivingUpdates()

	if r.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.server.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Error stopping webhook listener: %v", err)
		}
	}

	r.wg.Wait()
	log.Printf("✅ Bot stopped")
	return nil
}

// Run starts the runner and blocks until interrupted.
func (r *Runner) Run() error {
	if err := r.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("📡 Received interrupt signal")

	return r.Stop()
}
