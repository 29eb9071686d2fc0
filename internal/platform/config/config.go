package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa toda la configuración del servicio.
type Config struct {
	App        AppConfig
	Log        LogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	HTTP       HTTPConfig
	Coinbase   CoinbaseConfig
	Secrets    SecretsConfig
	Stripe     StripeConfig
	OpenAI     OpenAIConfig
	SMTP       SMTPConfig
	Newsletter NewsletterConfig
	Swagger    SwaggerConfig
}

type AppConfig struct {
	Name        string
	Env         string
	Port        string
	FrontendURL string
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	DSN             string // vacío => repos in-memory
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string // vacío => cache in-memory
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
	Issuer   string
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	CORSAllowOrigin []string
}

type CoinbaseConfig struct {
	APIBaseURL        string
	WSURL             string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthScopes       []string
	ReconnectDelay    time.Duration
	RequestsPerSecond float64
}

type SecretsConfig struct {
	// 32 bytes en base64 (std). Se usa para sellar claves privadas y tokens OAuth.
	EncryptionKey string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type NewsletterConfig struct {
	Enabled bool
	Cron    string
}

type SwaggerConfig struct {
	Enabled bool
}

// Load lee config.toml (opcional) + env vars con prefijo KX_.
// Prioridad: env > config.toml > defaults.
// DB_DSN y PORT se siguen respetando por compatibilidad con el despliegue anterior.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper arma Config desde una instancia ya preparada (tests).
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("KX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("database.dsn", "KX_DATABASE_DSN", "DB_DSN")
	_ = v.BindEnv("app.port", "KX_APP_PORT", "PORT")

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("app.name"),
			Env:         v.GetString("app.env"),
			Port:        v.GetString("app.port"),
			FrontendURL: strings.TrimRight(v.GetString("app.frontend_url"), "/"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("jwt.secret"),
			TokenTTL: v.GetDuration("jwt.token_ttl"),
			Issuer:   v.GetString("jwt.issuer"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			RateLimitRPS:    v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst:  v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigin: v.GetStringSlice("http.cors_allow_origins"),
		},
		Coinbase: CoinbaseConfig{
			APIBaseURL:        v.GetString("coinbase.api_base_url"),
			WSURL:             v.GetString("coinbase.ws_url"),
			OAuthClientID:     v.GetString("coinbase.oauth_client_id"),
			OAuthClientSecret: v.GetString("coinbase.oauth_client_secret"),
			OAuthRedirectURL:  v.GetString("coinbase.oauth_redirect_url"),
			OAuthAuthURL:      v.GetString("coinbase.oauth_auth_url"),
			OAuthTokenURL:     v.GetString("coinbase.oauth_token_url"),
			OAuthScopes:       v.GetStringSlice("coinbase.oauth_scopes"),
			ReconnectDelay:    v.GetDuration("coinbase.reconnect_delay"),
			RequestsPerSecond: v.GetFloat64("coinbase.requests_per_second"),
		},
		Secrets: SecretsConfig{
			EncryptionKey: v.GetString("secrets.encryption_key"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("stripe.secret_key"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
			Currency:      v.GetString("stripe.currency"),
			SuccessURL:    v.GetString("stripe.success_url"),
			CancelURL:     v.GetString("stripe.cancel_url"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			Model:   v.GetString("openai.model"),
			BaseURL: v.GetString("openai.base_url"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		Newsletter: NewsletterConfig{
			Enabled: v.GetBool("newsletter.enabled"),
			Cron:    v.GetString("newsletter.cron"),
		},
		Swagger: SwaggerConfig{
			Enabled: v.GetBool("swagger.enabled"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "kennel-exchange")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.frontend_url", "http://localhost:5173")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("jwt.token_ttl", 24*time.Hour)
	v.SetDefault("jwt.issuer", "kennel-exchange")

	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.rate_limit_rps", 20.0)
	v.SetDefault("http.rate_limit_burst", 40)
	v.SetDefault("http.cors_allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("coinbase.api_base_url", "https://api.coinbase.com/api/v3/brokerage")
	v.SetDefault("coinbase.ws_url", "wss://advanced-trade-ws.coinbase.com")
	v.SetDefault("coinbase.oauth_auth_url", "https://login.coinbase.com/oauth2/auth")
	v.SetDefault("coinbase.oauth_token_url", "https://login.coinbase.com/oauth2/token")
	v.SetDefault("coinbase.oauth_scopes", []string{"wallet:accounts:read", "wallet:buys:create", "wallet:sells:create", "wallet:orders:read", "wallet:orders:create"})
	v.SetDefault("coinbase.reconnect_delay", 5*time.Second)
	v.SetDefault("coinbase.requests_per_second", 10.0)

	v.SetDefault("stripe.currency", "usd")

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "High Table <hello@kennel.exchange>")

	v.SetDefault("newsletter.cron", "0 9 1 * *")
}

// IsProduction indica si corremos en prod.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.Port) == "" {
		return errors.New("config: app.port is required")
	}
	if c.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			return errors.New("config: jwt.secret must be at least 32 chars in production")
		}
		if c.Secrets.EncryptionKey == "" {
			return errors.New("config: secrets.encryption_key is required in production")
		}
	}
	if c.HTTP.RateLimitRPS < 0 {
		return errors.New("config: http.rate_limit_rps must be >= 0")
	}
	if c.Coinbase.ReconnectDelay <= 0 {
		return errors.New("config: coinbase.reconnect_delay must be > 0")
	}
	return nil
}
