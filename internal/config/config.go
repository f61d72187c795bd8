package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`

	CheckIntervalMinutes int `env:"CHECK_INTERVAL_MINUTES,default=30"`

	SerpAPIKey           string        `env:"SERPAPI_KEY"`
	SerpAPIBaseURL       string        `env:"SERPAPI_BASE_URL,default=https://serpapi.com"`
	AviationstackKey     string        `env:"AVIATIONSTACK_KEY"`
	AviationstackBaseURL string        `env:"AVIATIONSTACK_BASE_URL,default=https://api.aviationstack.com"`
	PriceSourceTimeout   time.Duration `env:"PRICE_SOURCE_TIMEOUT,default=15s"`

	DataPath    string `env:"DATA_PATH,default=flightwatch.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	MetricsAddr string `env:"METRICS_ADDR"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMinutes) * time.Minute
}
