// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno. Los secretos (JWT secret, SMTP pass,
// DSN) vienen siempre del entorno, nunca del YAML commiteado.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration permite escribir duraciones estilo Go ("30m", "168h") en el YAML;
// yaml.v3 no decodifica strings a time.Duration por sí solo.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		v, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("config: invalid duration %q", s)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("config: invalid duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std devuelve el time.Duration subyacente.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		MaxConns int    `yaml:"max_conns"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	JWT struct {
		Issuer string `yaml:"issuer"`
		// Secret solo por env (JWT_SECRET); acá queda para tests.
		Secret     string   `yaml:"-"`
		AccessTTL  Duration `yaml:"access_ttl"`
		RefreshTTL Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Auth struct {
		// BaseURL del frontend: arma el link de reset.
		BaseURL   string   `yaml:"base_url"`
		VerifyTTL Duration `yaml:"verify_ttl"`
		ResetTTL  Duration `yaml:"reset_ttl"`
	} `yaml:"auth"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		From               string `yaml:"from"`
		Username           string `yaml:"username"`
		Password           string `yaml:"-"` // solo por env (SMTP_PASSWORD)
		TLS                string `yaml:"tls"` // auto | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int      `yaml:"limit"`
			Window Duration `yaml:"window"`
		} `yaml:"login"`
		Forgot struct {
			Limit  int      `yaml:"limit"`
			Window Duration `yaml:"window"`
		} `yaml:"forgot"`
	} `yaml:"rate"`

	Providers struct {
		Google struct {
			Enabled      bool     `yaml:"enabled"`
			ClientID     string   `yaml:"client_id"`
			ClientSecret string   `yaml:"-"` // GOOGLE_CLIENT_SECRET
			RedirectURL  string   `yaml:"redirect_url"`
			Scopes       []string `yaml:"scopes"`
		} `yaml:"google"`
		GitHub struct {
			Enabled      bool   `yaml:"enabled"`
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"-"` // GITHUB_CLIENT_SECRET
			RedirectURL  string `yaml:"redirect_url"`
		} `yaml:"github"`
	} `yaml:"providers"`
}

// Load lee el YAML (path puede no existir: solo defaults + env), aplica
// defaults sanos y encima los overrides de entorno.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "fitpulse-identity"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = Duration(time.Hour)
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = Duration(7 * 24 * time.Hour)
	}
	if c.Auth.VerifyTTL == 0 {
		c.Auth.VerifyTTL = Duration(30 * time.Minute)
	}
	if c.Auth.ResetTTL == 0 {
		c.Auth.ResetTTL = Duration(time.Hour)
	}
	if c.Auth.BaseURL == "" {
		c.Auth.BaseURL = "http://localhost:3000"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == 0 {
		c.Rate.Login.Window = Duration(time.Minute)
	}
	if c.Rate.Forgot.Limit == 0 {
		c.Rate.Forgot.Limit = 5
	}
	if c.Rate.Forgot.Window == 0 {
		c.Rate.Forgot.Window = Duration(10 * time.Minute)
	}

	c.applyEnvOverrides()
	return &c, nil
}

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if v, ok := getEnvStr(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if v, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if v, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d, true
		}
	}
	return 0, false
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_MAX_CONNS"); ok {
		c.Storage.MaxConns = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = Duration(v)
	}
	if v, ok := getEnvDur("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = Duration(v)
	}

	if v, ok := getEnvStr("AUTH_BASE_URL"); ok {
		c.Auth.BaseURL = v
	}
	if v, ok := getEnvDur("AUTH_VERIFY_TTL"); ok {
		c.Auth.VerifyTTL = Duration(v)
	}
	if v, ok := getEnvDur("AUTH_RESET_TTL"); ok {
		c.Auth.ResetTTL = Duration(v)
	}

	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}

	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		c.Providers.Google.ClientID = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_SECRET"); ok {
		c.Providers.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("GOOGLE_REDIRECT_URL"); ok {
		c.Providers.Google.RedirectURL = v
	}
	if v, ok := getEnvStr("GITHUB_CLIENT_ID"); ok {
		c.Providers.GitHub.ClientID = v
	}
	if v, ok := getEnvStr("GITHUB_CLIENT_SECRET"); ok {
		c.Providers.GitHub.ClientSecret = v
	}
	if v, ok := getEnvStr("GITHUB_REDIRECT_URL"); ok {
		c.Providers.GitHub.RedirectURL = v
	}
}

// Validate chequea lo mínimo para arrancar en serio.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return errors.New("config: STORAGE_DSN is required for the postgres driver")
	}
	return nil
}
