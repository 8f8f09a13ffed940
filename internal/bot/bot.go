package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/store"
)

// linkKeyTpl maps a telegram user id onto a portal user id. The binding is
// created once via /link and never expires.
const linkKeyTpl = "tg:%d"

type Bot struct {
	config   *Config
	store    store.PortalStore
	sessions *app.SessionManager
	redis    *redis.Client
	api      *tgbotapi.BotAPI
	admins   map[int64]bool
}

func New(config *Config, store store.PortalStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	ttl := time.Duration(config.Auth.SessionTTLHours) * time.Hour
	sessions, err := app.NewSessionManager(config.Auth.RedisURL, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	admins := make(map[int64]bool)
	for _, id := range config.Bot.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		config:   config,
		store:    store,
		sessions: sessions,
		redis:    redis.NewClient(opt),
		api:      api,
		admins:   admins,
	}, nil
}

// linkedUserID resolves the telegram account to a portal user id, "" if
// the account was never linked.
func (b *Bot) linkedUserID(ctx context.Context, tgUserID int64) (string, error) {
	key := fmt.Sprintf(linkKeyTpl, tgUserID)
	userID, err := b.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis error: %w", err)
	}
	return userID, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			go b.handleMessage(update.Message)

		case <-sigChan:
			logger.Info.Println("Shutting down bot...")
			return nil
		}
	}
}
