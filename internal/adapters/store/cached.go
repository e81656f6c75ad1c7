package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ImpertiantLoris/solmate-bot/internal/cache"
	"github.com/ImpertiantLoris/solmate-bot/internal/core/domain"
)

// handleCacheTTL bounds staleness of handle lookups. Handles rarely move
// between wallets, so a short TTL is plenty.
const handleCacheTTL = 5 * time.Minute

// cachedHandle is the cacheable projection of a user record. Private key
// material must never reach the cache, so only public fields are stored;
// that also means cached records can only serve address resolution, never
// the custodial send path.
type cachedHandle struct {
	TelegramID      int64  `json:"telegram_id"`
	Username        string `json:"username"`
	WalletPublicKey string `json:"wallet_public_key"`
}

// CachedStore decorates a UserStore with a read-through cache on handle
// lookups. Identity-keyed reads and writes always hit the underlying store:
// issuance correctness depends on fresh records, and those reads need the
// secret material the cache deliberately lacks.
type CachedStore struct {
	inner domain.UserStore
	cache cache.Cache
}

// NewCachedStore wraps inner with c.
func NewCachedStore(inner domain.UserStore, c cache.Cache) *CachedStore {
	return &CachedStore{inner: inner, cache: c}
}

func handleKey(username string) string {
	return "handle:" + username
}

func (s *CachedStore) GetByTelegramID(ctx context.Context, id int64) (*domain.User, error) {
	return s.inner.GetByTelegramID(ctx, id)
}

func (s *CachedStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if raw, ok, err := s.cache.Get(ctx, handleKey(username)); err == nil && ok {
		var cached cachedHandle
		if json.Unmarshal([]byte(raw), &cached) == nil {
			return &domain.User{
				TelegramID:      cached.TelegramID,
				Username:        cached.Username,
				WalletPublicKey: cached.WalletPublicKey,
			}, nil
		}
	}

	user, err := s.inner.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return user, err
	}

	raw, err := json.Marshal(cachedHandle{
		TelegramID:      user.TelegramID,
		Username:        user.Username,
		WalletPublicKey: user.WalletPublicKey,
	})
	if err == nil {
		if err := s.cache.Set(ctx, handleKey(username), string(raw), handleCacheTTL); err != nil {
			log.Printf("⚠️ Failed to cache handle %q: %v", username, err)
		}
	}
	return user, nil
}

func (s *CachedStore) Upsert(ctx context.Context, user *domain.User) error {
	if err := s.inner.Upsert(ctx, user); err != nil {
		return err
	}
	if user.Username != "" {
		if err := s.cache.Delete(ctx, handleKey(user.Username)); err != nil {
			log.Printf("⚠️ Failed to invalidate handle %q: %v", user.Username, err)
		}
	}
	return nil
}
