package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Database struct {
		Driver string
		Path   string
	}
	Auth struct {
		CookieSecret string
		BcryptCost   int
	}
	Blog struct {
		PageSize int
	}
	Storage struct {
		MaxRetries    uint64
		RetryInterval time.Duration
	}
	Archive struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	CORS struct {
		AllowedOrigins []string
	}
}

// Load reads configuration from environment variables and optional config files.
// Variables use the MYBLOG_ prefix with dots replaced by underscores, e.g. MYBLOG_AUTH_COOKIESECRET.
func Load() (Config, error) {
	// existing environment variables win over .env entries
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MYBLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/myblog.db")
	v.SetDefault("auth.cookiesecret", "")
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("blog.pagesize", 5)
	v.SetDefault("storage.maxretries", 3)
	v.SetDefault("storage.retryinterval", "50ms")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.keyprefix", "deleted-entries")
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("cors.allowedorigins", []string{"*"})

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.CookieSecret) == "" {
		return fmt.Errorf("auth cookie secret is required (MYBLOG_AUTH_COOKIESECRET)")
	}
	switch c.Database.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}
