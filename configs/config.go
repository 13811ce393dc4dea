package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	// Gateway credentials are deliberately NOT checked in Validate():
	// a missing store id must surface as a ConfigurationError on the
	// checkout request itself, never let a session be created without it.
	Gateway struct {
		StoreID       string        `koanf:"store_id"`
		StorePassword string        `koanf:"store_password"`
		Sandbox       bool          `koanf:"sandbox"`
		APIBase       string        `koanf:"api_base"` // override for tests; empty = sandbox/live default
		BaseURL       string        `koanf:"base_url"` // public storefront URL embedded in callbacks
		Currency      string        `koanf:"currency"`
		Timeout       time.Duration `koanf:"timeout"`
	} `koanf:"gateway"`

	Cart struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cart"`

	Cache struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cache"`

	Idempotency struct {
		TTL     time.Duration `koanf:"ttl"`
		LockTTL time.Duration `koanf:"lock_ttl"`
	} `koanf:"idempotency"`

	Session struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"session"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Enabled bool     `koanf:"enabled"`
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
		GroupID string   `koanf:"group_id"`
	} `koanf:"kafka"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix CFLOW_, nested with __)
	// e.g. CFLOW_GATEWAY__STORE_ID, CFLOW_MYSQL__DSN
	if err := k.Load(env.Provider("CFLOW_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CFLOW_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Session.JWTSecret == "" {
		return fmt.Errorf("session.jwt_secret required")
	}
	return nil
}

const (
	sandboxAPIBase = "https://sandbox.sslcommerz.com"
	liveAPIBase    = "https://securepay.sslcommerz.com"
)

// GatewayAPIBase resolves the gateway host: explicit override first,
// then sandbox/live by the sandbox flag.
func (c Config) GatewayAPIBase() string {
	if c.Gateway.APIBase != "" {
		return c.Gateway.APIBase
	}
	if c.Gateway.Sandbox {
		return sandboxAPIBase
	}
	return liveAPIBase
}
