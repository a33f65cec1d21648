package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client Redis 客户端封装
type Client struct {
	config *Config
	logger *logger.Logger
	rdb    redis.UniversalClient
}

// New 创建 Redis 客户端
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &redis.UniversalOptions{
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	}
	switch cfg.Mode {
	case ModeSentinel:
		opts.Addrs = cfg.SentinelAddrs
		opts.MasterName = cfg.MasterName
	default:
		opts.Addrs = []string{cfg.MasterAddr}
	}

	client := &Client{
		config: cfg,
		logger: log,
		rdb:    redis.NewUniversalClient(opts),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info("redis client initialized successfully",
		zap.String("mode", string(cfg.Mode)),
		zap.Strings("addrs", opts.Addrs),
	)
	return client, nil
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Run 执行 Lua 脚本（优先 EVALSHA，未缓存时回退 EVAL）
func (c *Client) Run(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) (interface{}, error) {
	result, err := script.Run(ctx, c.rdb, keys, args...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Error("redis script failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
	return result, err
}

// Script Lua 脚本
type Script = redis.Script

// NewScript 创建 Lua 脚本，执行时按 SHA 缓存
func NewScript(src string) *Script {
	return redis.NewScript(src)
}
