package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env           string `mapstructure:"env"`
	Port          int    `mapstructure:"port"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	TagTTLSeconds int    `mapstructure:"tag_ttl_seconds"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RateLimitConfig struct {
	Limit         int `mapstructure:"limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Mongo     MongoConfig     `mapstructure:"mongodb"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.App.TokenTTLHours) * time.Hour
}

func (c *Config) TagTTL() time.Duration {
	return time.Duration(c.Redis.TagTTLSeconds) * time.Second
}

func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// Load reads config.yaml from the working directory when present and
// lets environment variables (APP_PORT, MONGODB_URI, ...) override it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.jwt_secret", "dev-secret-change-me")
	v.SetDefault("app.token_ttl_hours", 72)
	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.database", "conduit")
	v.SetDefault("mongodb.collection", "documents")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tag_ttl_seconds", 300)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "article.events")
	v.SetDefault("ratelimit.limit", 100)
	v.SetDefault("ratelimit.window_seconds", 60)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
