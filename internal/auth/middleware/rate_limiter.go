package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/media-attached-filter/internal/pkg/errors"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/redis"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/response"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/validator"
	"go.uber.org/zap"
)

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// 时间窗口内允许的最大请求数
	MaxRequests int `mapstructure:"max_requests"`
	// 时间窗口（秒）
	WindowSeconds int `mapstructure:"window_seconds"`
	// 限流策略：user, endpoint, ip（默认）
	Strategy string `mapstructure:"strategy"`
}

// 滑动窗口：成员用纳秒时间戳 + 序号去重，分值为秒
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('EXPIRE', key, window)
		return {1, limit - current - 1, now + window}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
	return {0, 0, tonumber(oldest) + window}
`)

// RateLimiter 基于 Redis 的滑动窗口限流中间件，redisClient 为 nil 时不限流
func RateLimiter(redisClient *redis.Client, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.Strategy == "" {
		cfg.Strategy = "ip"
	}

	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := buildRateLimitKey(c, cfg.Strategy)
		allowed, remaining, resetTime, err := checkRateLimit(c.Request.Context(), redisClient, key, cfg)
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			// 限流器故障时，降级允许请求通过
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(cfg.WindowSeconds))
			response.AbortWithCode(c, apperrors.ErrTooManyRequests,
				fmt.Sprintf("please try again in %d seconds", cfg.WindowSeconds))
			return
		}

		c.Next()
	}
}

// buildRateLimitKey 构建限流 key
func buildRateLimitKey(c *gin.Context, strategy string) string {
	const prefix = "maf:rate_limit"
	ip := validator.NormalizeIP(c.ClientIP())

	switch strategy {
	case "user":
		if userID, ok := GetUserID(c); ok && userID != "" {
			return fmt.Sprintf("%s:user:%s", prefix, userID)
		}
		// 未认证用户回退到 IP 限流
		return fmt.Sprintf("%s:ip:%s", prefix, ip)
	case "endpoint":
		return fmt.Sprintf("%s:endpoint:%s:%s", prefix, c.FullPath(), ip)
	default:
		return fmt.Sprintf("%s:ip:%s", prefix, ip)
	}
}

func checkRateLimit(ctx context.Context, redisClient *redis.Client, key string, cfg RateLimiterConfig) (allowed bool, remaining int, resetTime int64, err error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)

	result, err := redisClient.Run(ctx, slidingWindow, []string{key}, now.Unix(), cfg.WindowSeconds, cfg.MaxRequests, member)
	if err != nil {
		return false, 0, 0, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, 0, fmt.Errorf("invalid rate limit result: %v", result)
	}

	allowedInt, _ := values[0].(int64)
	remainingInt, _ := values[1].(int64)
	resetTimeInt, _ := values[2].(int64)

	return allowedInt == 1, int(remainingInt), resetTimeInt, nil
}
