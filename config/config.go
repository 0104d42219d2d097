package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Journal     JournalConfig     `mapstructure:"journal"`
	UserService UserServiceConfig `mapstructure:"user_service"`
	Social      SocialConfig      `mapstructure:"social"`
	Auth        AuthConfig        `mapstructure:"auth"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Mode     string `mapstructure:"mode"` // debug / release
	UserAddr string `mapstructure:"user_addr"`
	PostAddr string `mapstructure:"post_addr"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JournalConfig 边修复日志库（sqlite 或 postgres）
type JournalConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type UserServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SocialConfig 业务容量参数
type SocialConfig struct {
	FollowerCap int `mapstructure:"follower_cap"`
	FeedLimit   int `mapstructure:"feed_limit"`
}

type AuthConfig struct {
	// Mode: header 直接信任 X-User-Uid；bearer 从网关已验签的 JWT claims 取 uid
	Mode      string `mapstructure:"mode"`
	UIDHeader string `mapstructure:"uid_header"`
	UIDClaim  string `mapstructure:"uid_claim"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load 读取配置文件并套用环境变量覆盖（SOCIALFEED_ 前缀）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("SOCIALFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 允许没有配置文件，全部走默认值 + 环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.user_addr", ":8081")
	v.SetDefault("server.post_addr", ":8082")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "socialfeed.db")

	v.SetDefault("user_service.base_url", "http://localhost:8081")
	v.SetDefault("user_service.timeout", 3*time.Second)

	v.SetDefault("social.follower_cap", 10)
	v.SetDefault("social.feed_limit", 50)

	v.SetDefault("auth.mode", "header")
	v.SetDefault("auth.uid_header", "X-User-Uid")
	v.SetDefault("auth.uid_claim", "sub")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 100)
	v.SetDefault("rate_limit.burst", 200)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4318")

	v.SetDefault("log.level", "info")
}
