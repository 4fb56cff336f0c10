package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// Comma-separated override for the trusted-clock endpoints.
	TimeEndpoints  []string `env:"TIME_ENDPOINTS" envSeparator:","`
	ClockSyncCron  string   `env:"CLOCK_SYNC_CRON" envDefault:"@every 15m"`
	NotifyWebhook  string   `env:"NOTIFY_WEBHOOK_URL"`
	NotifyTimeoutS int      `env:"NOTIFY_TIMEOUT_SECONDS" envDefault:"5"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
