package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

const defaultKeyPrefix = "repurpose:update:"

// UpdateLedger claims Telegram update ids with SETNX so a redelivered webhook is handled once.
type UpdateLedger interface {
	Claim(ctx context.Context, updateID int64) (bool, error)
	Close() error
}

type LedgerConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

type updateLedger struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewUpdateLedger(log *logger.Logger, cfg LedgerConfig) (UpdateLedger, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &updateLedger{
		log:    log.With("client", "RedisUpdateLedger"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (l *updateLedger) Claim(ctx context.Context, updateID int64) (bool, error) {
	if l == nil || l.rdb == nil {
		return false, fmt.Errorf("redis update ledger not initialized")
	}
	ok, err := l.rdb.SetNX(ctx, l.key(updateID), time.Now().UTC().Unix(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (l *updateLedger) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}

func (l *updateLedger) key(updateID int64) string {
	return l.prefix + strconv.FormatInt(updateID, 10)
}
