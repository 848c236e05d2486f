package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/weekplan-api/pkg/config"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "weekplan"

// NewRedis returns a Redis client that has answered a ping.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr(), err)
	}

	return client, nil
}

// Key builds "weekplan:<parts...>:<sha256(payload)>" so equal inputs share an entry.
func Key(payload interface{}, parts ...string) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("hash cache payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	segments := append([]string{KeyPrefix}, parts...)
	segments = append(segments, hex.EncodeToString(sum[:16]))
	return strings.Join(segments, ":"), nil
}

// Pattern returns a SCAN pattern matching every key under parts.
func Pattern(parts ...string) string {
	return strings.Join(append([]string{KeyPrefix}, parts...), ":") + ":*"
}
