package config

import (
	"flag"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	ServerURL   string `env:"-"`

	// Потолок размера одного медиафайла, МБ.
	MediaMaxSizeMB int `env:"MEDIA_MAX_MB"`

	// Время жизни токена хранилища и период зачистки, минуты.
	VaultTokenTTLMin int `env:"VAULT_TOKEN_TTL_MIN"`
	VaultSweepMin    int `env:"VAULT_SWEEP_MIN"`

	// Version печатает версию CLI и выходит.
	Version bool `env:"-"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS")
	flag.IntVar(&cfg.MediaMaxSizeMB, "media-max-mb", cfg.MediaMaxSizeMB, "максимальный размер медиафайла, МБ")
	flag.IntVar(&cfg.VaultTokenTTLMin, "vault-ttl-min", cfg.VaultTokenTTLMin, "время жизни vault-токена, минуты")
	flag.IntVar(&cfg.VaultSweepMin, "vault-sweep-min", cfg.VaultSweepMin, "период зачистки vault-токенов, минуты")
	flag.BoolVar(&cfg.Version, "version", false, "print version and exit")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.MediaMaxSizeMB <= 0 {
		cfg.MediaMaxSizeMB = 50
	}
	if cfg.VaultTokenTTLMin <= 0 {
		cfg.VaultTokenTTLMin = 30
	}
	if cfg.VaultSweepMin <= 0 {
		cfg.VaultSweepMin = 5
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	return cfg
}

// VaultTokenTTL возвращает TTL токена как Duration.
func (c *Config) VaultTokenTTL() time.Duration {
	return time.Duration(c.VaultTokenTTLMin) * time.Minute
}

// VaultSweepInterval возвращает период зачистки как Duration.
func (c *Config) VaultSweepInterval() time.Duration {
	return time.Duration(c.VaultSweepMin) * time.Minute
}
