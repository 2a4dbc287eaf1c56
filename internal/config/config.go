package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string  `yml:"env" env:"ENV" env-default:"local"`
	Server  Server  `yml:"server"`
	GitHub  GitHub  `yml:"github"`
	Ledger  Ledger  `yml:"ledger"`
	Session Session `yml:"session"`
}

type Server struct {
	Host string `yml:"host" env:"SERVER_HOST" env-default:"localhost"`
	Port string `yml:"port" env:"SERVER_PORT" env-default:"3000"`
	// PublicHost is the externally reachable base URL, used to build
	// claim links in fallback comments and the OAuth callback URL.
	PublicHost string        `yml:"public_host" env:"PUBLIC_HOST" env-default:"http://localhost:3000"`
	Timeout    time.Duration `yml:"timeout" env-default:"5s"`
}

type GitHub struct {
	AppID         int64  `yml:"app_id" env:"GITHUB_APP_ID" env-required:"true"`
	AppPrivateKey string `yml:"app_private_key" env:"GITHUB_APP_PRIVATE_KEY" env-required:"true"`
	ClientID      string `yml:"client_id" env:"GITHUB_KEY" env-required:"true"`
	ClientSecret  string `yml:"client_secret" env:"GITHUB_SECRET" env-required:"true"`

	AmountLabelPattern string         `yml:"amount_label_pattern" env:"AMOUNT_LABEL_PATTERN" env-default:"^kredits-\\d"`
	ClaimedLabel       string         `yml:"claimed_label" env:"CLAIMED_LABEL" env-default:"kredits-claimed"`
	Amounts            map[string]int `yml:"amounts"`
}

type Ledger struct {
	BaseURL string        `yml:"base_url" env:"LEDGER_BASE_URL" env-required:"true"`
	Timeout time.Duration `yml:"timeout" env-default:"30s"`
}

type Session struct {
	Secret string `yml:"secret" env:"SESSION_SECRET" env-required:"true"`
}

// defaultAmounts is the reward tier table used when the config file does
// not override it.
func defaultAmounts() map[string]int {
	return map[string]int{
		"kredits-1": 500,
		"kredits-2": 1500,
		"kredits-3": 5000,
	}
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if len(cfg.GitHub.Amounts) == 0 {
		cfg.GitHub.Amounts = defaultAmounts()
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}
