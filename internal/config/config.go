package config

import (
	"fmt"
	"strings"

	"github.com/kosku-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Promo    PromoConfig    `mapstructure:"promo"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit  RateLimitConfig `mapstructure:"login_rate_limit"`
	CouponRateLimit RateLimitConfig `mapstructure:"coupon_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// PromoConfig 促销引擎配置
type PromoConfig struct {
	ReservationTTLMinutes int `mapstructure:"reservation_ttl_minutes"` // reserved 记录的最长存活时间
}

// defaults 全部配置项的缺省值。配置文件与环境变量都缺席时，
// 进程以 sqlite + 本机 redis 的开发形态启动。
var defaults = map[string]interface{}{
	"server.host": "0.0.0.0",
	"server.port": "8080",
	"server.mode": "debug",

	"log.dir":          "",
	"log.filename":     "kosku.log",
	"log.max_size_mb":  100,
	"log.max_backups":  7,
	"log.max_age_days": 30,
	"log.compress":     true,

	"database.driver":                          "sqlite",
	"database.dsn":                             "./db/kosku.db",
	"database.pool.max_open_conns":             1,
	"database.pool.max_idle_conns":             1,
	"database.pool.conn_max_lifetime_seconds":  0,
	"database.pool.conn_max_idle_time_seconds": 0,

	"jwt.secret":       "change-me-in-production",
	"jwt.expire_hours": 24,

	"redis.enabled":  true,
	"redis.host":     "127.0.0.1",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,
	"redis.prefix":   "ks",

	"queue.enabled":     true,
	"queue.host":        "127.0.0.1",
	"queue.port":        6379,
	"queue.password":    "",
	"queue.db":          1,
	"queue.concurrency": 10,
	"queue.queues":      map[string]int{"default": 10},

	"cors.allowed_origins": []string{"*"},
	"cors.allowed_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"cors.allowed_headers": []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-CSRF-Token",
	},
	"cors.allow_credentials": true,
	"cors.max_age":           600,

	"security.login_rate_limit.window_seconds":  300,
	"security.login_rate_limit.max_attempts":    5,
	"security.coupon_rate_limit.window_seconds": 60,
	"security.coupon_rate_limit.max_attempts":   10,

	"promo.reservation_ttl_minutes": 30,
}

// Load 读取 config.yml 并叠加环境变量，文件缺席时仅用默认值与环境变量。
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../") // 从 cmd/server 目录运行时
	viper.AddConfigPath("./etc")

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	// 环境变量覆盖：server.port -> SERVER_PORT
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}
	return &cfg
}
