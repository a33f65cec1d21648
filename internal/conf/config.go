package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lk2023060901/media-attached-filter/internal/auth/middleware"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/database"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/minio"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/redis"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 MAF_AUTH_JWT_SECRET
const EnvPrefix = "MAF"

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Redis    redis.Config    `mapstructure:"redis"`
	MinIO    minio.Config    `mapstructure:"minio"`
	Log      logger.Config   `mapstructure:"log"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Media    MediaConfig     `mapstructure:"media"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret string                       `mapstructure:"jwt_secret"`
	JWTIssuer string                       `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration                `mapstructure:"token_ttl"`
	NonceTTL  time.Duration                `mapstructure:"nonce_ttl"`
	RateLimit middleware.RateLimiterConfig `mapstructure:"rate_limit"`
}

type MediaConfig struct {
	// ParamName is the listing request parameter holding the typed parent title
	ParamName       string `mapstructure:"param_name"`
	SuggestionLimit int    `mapstructure:"suggestion_limit"`
	Screen          string `mapstructure:"screen"`
	AjaxAction      string `mapstructure:"ajax_action"`
	NonceAction     string `mapstructure:"nonce_action"`
	AjaxURL         string `mapstructure:"ajax_url"`
	AssetsDir       string `mapstructure:"assets_dir"`
	AssetsURL       string `mapstructure:"assets_url"`
	MaxUploadSize   int64  `mapstructure:"max_upload_size"`
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: *database.DefaultConfig(),
		Redis:    *redis.DefaultConfig(),
		MinIO:    *minio.DefaultConfig(),
		Log:      *logger.DefaultConfig(),
		Auth: AuthConfig{
			JWTIssuer: "media-attached-filter",
			TokenTTL:  12 * time.Hour,
			NonceTTL:  24 * time.Hour,
			RateLimit: middleware.RateLimiterConfig{
				MaxRequests:   120,
				WindowSeconds: 60,
				Strategy:      "user",
			},
		},
		Media: MediaConfig{
			ParamName:       "maf_attached",
			SuggestionLimit: 10,
			Screen:          "upload",
			AjaxAction:      "maf_search",
			NonceAction:     "maf-search",
			AjaxURL:         "/admin/ajax",
			AssetsDir:       "web",
			AssetsURL:       "/admin/assets",
			MaxUploadSize:   32 << 20,
		},
	}
}

// LoadConfig 读取配置：默认值 < 配置文件 < .env / 环境变量 (MAF_*)
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override keys the
// config file does not mention
func setDefaults(v *viper.Viper, def *Config) {
	defaults := map[string]any{
		"server.host":             def.Server.Host,
		"server.port":             def.Server.Port,
		"server.mode":             def.Server.Mode,
		"server.read_timeout":     def.Server.ReadTimeout,
		"server.write_timeout":    def.Server.WriteTimeout,
		"server.shutdown_timeout": def.Server.ShutdownTimeout,

		"database.host":            def.Database.Host,
		"database.port":            def.Database.Port,
		"database.user":            def.Database.User,
		"database.password":        def.Database.Password,
		"database.dbname":          def.Database.DBName,
		"database.sslmode":         def.Database.SSLMode,
		"database.timezone":        def.Database.Timezone,
		"database.maxidleconns":    def.Database.MaxIdleConns,
		"database.maxopenconns":    def.Database.MaxOpenConns,
		"database.connmaxlifetime": def.Database.ConnMaxLifetime,
		"database.connmaxidletime": def.Database.ConnMaxIdleTime,
		"database.loglevel":        def.Database.LogLevel,
		"database.slowthreshold":   def.Database.SlowThreshold,
		"database.preparestmt":     def.Database.PrepareStmt,
		"database.automigrate":     def.Database.AutoMigrate,

		"redis.enabled":        def.Redis.Enabled,
		"redis.mode":           string(def.Redis.Mode),
		"redis.master_addr":    def.Redis.MasterAddr,
		"redis.sentinel_addrs": def.Redis.SentinelAddrs,
		"redis.master_name":    def.Redis.MasterName,
		"redis.username":       def.Redis.Username,
		"redis.password":       def.Redis.Password,
		"redis.db":             def.Redis.DB,
		"redis.pool_size":      def.Redis.PoolSize,
		"redis.min_idle_conns": def.Redis.MinIdleConns,
		"redis.dial_timeout":   def.Redis.DialTimeout,
		"redis.read_timeout":   def.Redis.ReadTimeout,
		"redis.write_timeout":  def.Redis.WriteTimeout,
		"redis.max_retries":    def.Redis.MaxRetries,

		"minio.enabled":        def.MinIO.Enabled,
		"minio.endpoint":       def.MinIO.Endpoint,
		"minio.access_key":     def.MinIO.AccessKeyID,
		"minio.secret_key":     def.MinIO.SecretAccessKey,
		"minio.region":         def.MinIO.Region,
		"minio.use_ssl":        def.MinIO.UseSSL,
		"minio.bucket":         def.MinIO.Bucket,
		"minio.presign_expiry": def.MinIO.PresignExpiry,

		"log.level":            def.Log.Level,
		"log.format":           def.Log.Format,
		"log.output":           def.Log.Output,
		"log.enablecaller":     def.Log.EnableCaller,
		"log.enablestacktrace": def.Log.EnableStacktrace,
		"log.file.filename":    def.Log.File.Filename,
		"log.file.maxsize":     def.Log.File.MaxSize,
		"log.file.maxage":      def.Log.File.MaxAge,
		"log.file.maxbackups":  def.Log.File.MaxBackups,
		"log.file.compress":    def.Log.File.Compress,

		"auth.jwt_secret":                def.Auth.JWTSecret,
		"auth.jwt_issuer":                def.Auth.JWTIssuer,
		"auth.token_ttl":                 def.Auth.TokenTTL,
		"auth.nonce_ttl":                 def.Auth.NonceTTL,
		"auth.rate_limit.max_requests":   def.Auth.RateLimit.MaxRequests,
		"auth.rate_limit.window_seconds": def.Auth.RateLimit.WindowSeconds,
		"auth.rate_limit.strategy":       def.Auth.RateLimit.Strategy,

		"media.param_name":       def.Media.ParamName,
		"media.suggestion_limit": def.Media.SuggestionLimit,
		"media.screen":           def.Media.Screen,
		"media.ajax_action":      def.Media.AjaxAction,
		"media.nonce_action":     def.Media.NonceAction,
		"media.ajax_url":         def.Media.AjaxURL,
		"media.assets_dir":       def.Media.AssetsDir,
		"media.assets_url":       def.Media.AssetsURL,
		"media.max_upload_size":  def.Media.MaxUploadSize,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 characters")
	}
	if c.Media.ParamName == "" || c.Media.AjaxAction == "" || c.Media.NonceAction == "" {
		return errors.New("media.param_name, media.ajax_action and media.nonce_action are required")
	}
	if c.Media.SuggestionLimit <= 0 {
		return fmt.Errorf("invalid media.suggestion_limit: %d", c.Media.SuggestionLimit)
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if c.Redis.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	if c.MinIO.Enabled {
		if err := c.MinIO.Validate(); err != nil {
			return err
		}
	}
	return nil
}
