package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type RegistryConfig struct {
	// Wishlist is the ordered list of backend names to try to register
	// at startup. Unknown names are dropped with a log line.
	Wishlist []string `mapstructure:"wishlist"`

	// Probe enables a live health check per candidate during
	// registration. Off by default: free-tier endpoints flap, and a slow
	// probe should not delay boot.
	Probe bool `mapstructure:"probe"`
}

type DispatchConfig struct {
	DefaultProvider string `mapstructure:"default_provider"`

	// Backups is the fixed failover order, consulted once front to back.
	Backups []string `mapstructure:"backups"`

	// Floors maps provider name to a minimum timeout in seconds. Large
	// models need more time than callers tend to allow.
	Floors map[string]int `mapstructure:"floors"`

	DefaultTimeoutSec int `mapstructure:"default_timeout_sec"`
	MinTimeoutSec     int `mapstructure:"min_timeout_sec"`
	MaxTimeoutSec     int `mapstructure:"max_timeout_sec"`
}

// Floor returns the per-provider minimum timeout, zero when none is set.
func (d DispatchConfig) Floor(providerName string) time.Duration {
	if sec, ok := d.Floors[providerName]; ok {
		return time.Duration(sec) * time.Second
	}
	return 0
}

type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("server.port", "5004")
	v.SetDefault("server.env", "development")

	v.SetDefault("registry.wishlist", []string{
		"Qwen_Qwen_2_72B", "Qwen_Qwen_2_5_Max", "Qwen_Qwen_2_5", "Qwen_Qwen_2_5M",
		"FreeGpt", "Liaobots", "HuggingChat", "DeepInfra", "You", "Gemini",
		"Phind", "Blackbox", "ChatGpt",
	})
	v.SetDefault("registry.probe", false)

	v.SetDefault("dispatch.default_provider", "Qwen_Qwen_2_72B")
	v.SetDefault("dispatch.backups", []string{
		"Qwen_Qwen_2_72B", "Qwen_Qwen_2_5_Max", "Qwen_Qwen_2_5", "Qwen_Qwen_2_5M",
	})
	v.SetDefault("dispatch.floors", map[string]int{
		"Qwen_Qwen_2_72B":   45,
		"Qwen_Qwen_2_5_Max": 30,
		"Qwen_Qwen_2_5":     30,
	})
	v.SetDefault("dispatch.default_timeout_sec", 20)
	v.SetDefault("dispatch.min_timeout_sec", 1)
	v.SetDefault("dispatch.max_timeout_sec", 60)

	v.SetDefault("store.dsn", "file:relay.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}
