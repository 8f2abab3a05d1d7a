package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database  DatabaseConfigs  `toml:"database"`
	ApiServer ServerConfigs    `toml:"api_server"`
	Discord   DiscordConfigs   `toml:"discord"`
	Auth      AuthConfigs      `toml:"auth"`
	Session   SessionConfigs   `toml:"session"`
	Redis     RedisConfigs     `toml:"redis"`
	KeepAlive KeepAliveConfigs `toml:"keep_alive"`
}

type DatabaseConfigs struct {
	// Driver is either "sqlite" or "mysql".
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type ServerConfigs struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DiscordConfigs struct {
	ClientID       string   `toml:"client_id"`
	ClientSecret   string   `toml:"client_secret"`
	RedirectURL    string   `toml:"redirect_url"`
	BotToken       string   `toml:"bot_token"`
	APIURL         string   `toml:"api_url"`
	Scopes         []string `toml:"scopes"`
	RequestTimeout Duration `toml:"request_timeout"`
}

type AuthConfigs struct {
	APIKey            string   `toml:"api_key"`
	APIKeyHeader      string   `toml:"api_key_header"`
	UnauthorizedDelay Duration `toml:"unauthorized_delay"`
}

type SessionConfigs struct {
	Secret string `toml:"secret"`
	Name   string `toml:"name"`

	// MaxAge bounds the consent round trip, in seconds.
	MaxAge int `toml:"max_age"`
}

type RedisConfigs struct {
	Addr    string   `toml:"addr"`
	LockTTL Duration `toml:"lock_ttl"`
}

type KeepAliveConfigs struct {
	SelfURL      string   `toml:"self_url"`
	InitialDelay Duration `toml:"initial_delay"`
	Interval     Duration `toml:"interval"`
}

// Duration is a time.Duration which is written as "30s" or "12m" in the
// config file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver: "sqlite",
			DSN:    "members.db",
		},
		ApiServer: ServerConfigs{
			Host: "0.0.0.0",
			Port: "5000",
		},
		Discord: DiscordConfigs{
			APIURL:         "https://discord.com/api",
			Scopes:         []string{"identify", "guilds.join"},
			RequestTimeout: Duration{10 * time.Second},
		},
		Auth: AuthConfigs{
			APIKeyHeader:      "X-API-Key",
			UnauthorizedDelay: Duration{time.Second},
		},
		Session: SessionConfigs{
			Name:   "guildsync",
			MaxAge: 600,
		},
		Redis: RedisConfigs{
			LockTTL: Duration{30 * time.Second},
		},
		KeepAlive: KeepAliveConfigs{
			InitialDelay: Duration{30 * time.Second},
			Interval:     Duration{720 * time.Second},
		},
	}
}

// Load reads the configs from a toml file on top of Default, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Configs) applyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"BOT_TOKEN":       &c.Discord.BotToken,
		"CLIENT_ID":       &c.Discord.ClientID,
		"CLIENT_SECRET":   &c.Discord.ClientSecret,
		"REDIRECT_URI":    &c.Discord.RedirectURL,
		"API_KEY":         &c.Auth.APIKey,
		"SESSION_SECRET":  &c.Session.Secret,
		"SELF_URL":        &c.KeepAlive.SelfURL,
		"PORT":            &c.ApiServer.Port,
		"DATABASE_DRIVER": &c.Database.Driver,
		"DATABASE_DSN":    &c.Database.DSN,
		"REDIS_ADDR":      &c.Redis.Addr,
		"LOG_LEVEL":       &c.LogLevel,
	}

	for name, field := range overrides {
		if value, ok := lookup(name); ok && value != "" {
			*field = value
		}
	}
}

// Validate checks the fields without which no operation can succeed.
func (c Configs) Validate() error {
	if c.Discord.ClientID == "" || c.Discord.ClientSecret == "" || c.Discord.RedirectURL == "" {
		return errors.New("CLIENT_ID, CLIENT_SECRET and REDIRECT_URI must be set")
	}

	if c.Discord.BotToken == "" {
		return errors.New("BOT_TOKEN must be set")
	}

	if c.Auth.APIKey == "" {
		return errors.New("API_KEY must be set")
	}

	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	return nil
}
