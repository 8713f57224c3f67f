package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Site       SiteConfig       `mapstructure:"site"`
	DB         DBConfig         `mapstructure:"db"`
	OIDC       OIDCConfig       `mapstructure:"oidc"`
	Log        LogConfig        `mapstructure:"log"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Revalidate RevalidateConfig `mapstructure:"revalidate"`
	Session    SessionConfig    `mapstructure:"session"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port string    `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
}

// SiteConfig holds site identity settings used in rendered pages and the sitemap.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Name    string `mapstructure:"name"`
	// StorageBaseURL is the object storage host used to resolve bare
	// "storage/..." image references in post content.
	StorageBaseURL string `mapstructure:"storage_base_url"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// OIDCConfig holds OIDC client configuration for the admin login.
type OIDCConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// CacheConfig holds the render cache configuration.
type CacheConfig struct {
	FilePath   string `mapstructure:"file_path"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// RateLimitConfig holds the contact-form rate limiter configuration.
type RateLimitConfig struct {
	IntervalMS     int `mapstructure:"interval_ms"`
	MaxPerInterval int `mapstructure:"max_per_interval"`
	MaxClients     int `mapstructure:"max_clients"`
}

// RevalidateConfig holds the shared-secret token that gates the
// cache-revalidation endpoint.
type RevalidateConfig struct {
	Token string `mapstructure:"token"`
}

// SessionConfig holds admin session settings.
type SessionConfig struct {
	SecretKey string `mapstructure:"secretkey"`
	Lifetime  int    `mapstructure:"lifetime"` // hours
}

// CORSConfig holds allowed origins for the JSON API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("site.base_url", "http://localhost:8080")
	viper.SetDefault("site.name", "Masterpiece Alliance")
	viper.SetDefault("db.dsn", "site:site@tcp(localhost:3306)/coaching_site?parseTime=true")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("cache.file_path", "render_cache.db")
	viper.SetDefault("cache.ttl_seconds", 300)
	viper.SetDefault("ratelimit.interval_ms", 60000)
	viper.SetDefault("ratelimit.max_per_interval", 5)
	viper.SetDefault("ratelimit.max_clients", 500)
	viper.SetDefault("session.lifetime", 12)
	viper.SetDefault("cors.allowed_origins", []string{"*"})

	// Set up viper to read from config file
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/coaching-site/")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	viper.SetEnvPrefix("SITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal the config into the Config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
