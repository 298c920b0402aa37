package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig       `mapstructure:"api"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Token     TokenConfig     `mapstructure:"token"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// APIConfig 远端课程/进度API
type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout_seconds"`
	DeviceName    string        `mapstructure:"device_name"`
	RatePerSecond int           `mapstructure:"rate_per_second"`
}

type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // sqlite | redis | memory
	Path       string        `mapstructure:"path"`
	CourseTTL  time.Duration `mapstructure:"course_ttl_hours"`
	ProfileTTL time.Duration `mapstructure:"profile_ttl_minutes"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

type TokenConfig struct {
	// EncryptionKey 为空时令牌明文落盘（降级方案，启动时告警）
	EncryptionKey string `mapstructure:"encryption_key"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LINGO_CLIENT")
	viper.AutomaticEnv()

	// API
	viper.BindEnv("api.base_url", "API_BASE_URL")
	viper.BindEnv("api.device_name", "API_DEVICE_NAME")

	// Cache
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.path", "CACHE_PATH")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Token
	viper.BindEnv("token.encryption_key", "TOKEN_ENCRYPTION_KEY")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")
	viper.BindEnv("server.port", "SERVER_PORT")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 配置文件的数值带各自单位
	cfg.API.Timeout = cfg.API.Timeout * time.Second
	cfg.Cache.CourseTTL = cfg.Cache.CourseTTL * time.Hour
	cfg.Cache.ProfileTTL = cfg.Cache.ProfileTTL * time.Minute

	applyDefaults(&cfg)

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8090"
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	if cfg.API.DeviceName == "" {
		cfg.API.DeviceName = "lingo-sync-client"
	}
	if cfg.API.RatePerSecond <= 0 {
		cfg.API.RatePerSecond = 10
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "sqlite"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "data/client.db"
	}
	if cfg.Cache.CourseTTL <= 0 {
		cfg.Cache.CourseTTL = 24 * time.Hour
	}
	if cfg.Cache.ProfileTTL <= 0 {
		cfg.Cache.ProfileTTL = 15 * time.Minute
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		cfg.RateLimit.MaxRequests = 1000
	}
	if cfg.RateLimit.WindowMinutes <= 0 {
		cfg.RateLimit.WindowMinutes = 1
	}
}
