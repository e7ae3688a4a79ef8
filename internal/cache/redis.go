package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kosku-next/internal/config"
	"github.com/kosku-next/internal/constants"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisPrefix string
)

// InitRedis 初始化 Redis 客户端并探测连通性。
// 配置未启用时静默跳过，所有缓存操作退化为 no-op。
func InitRedis(cfg *config.RedisConfig) error {
	redisClient = nil
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	redisPrefix = strings.TrimSpace(cfg.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return errors.New("redis ping failed: " + err.Error())
	}

	redisClient = client
	return nil
}

// Enabled 判断缓存是否可用
func Enabled() bool {
	return redisClient != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil
func Client() *redis.Client {
	return redisClient
}

// GetJSON 读取并反序列化缓存值，返回是否命中。
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := redisClient.Get(ctx, buildKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化并写入缓存值
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, buildKey(key), payload, ttl).Err()
}

func buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return redisPrefix
	}
	return redisPrefix + ":" + trimmed
}
