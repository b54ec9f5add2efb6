package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const developmentSecret = "development-only-secret"

type Config struct {
	Port      string `env:"PORT,      default=3000"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	TokenTTL            time.Duration `env:"TOKEN_TTL,            default=24h"`
	BcryptCost          int           `env:"BCRYPT_COST,          default=10"`
	ApplicationCooldown time.Duration `env:"APPLICATION_COOLDOWN, default=168h"`
	SeedFile            string        `env:"SEED_FILE"`

	HTTP       HTTPConfig
	Store      StoreConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	SuperAdmin SuperAdminConfig
}

type HTTPConfig struct {
	UploadDir     string `env:"UPLOAD_DIR,      default=uploads"`
	StaticDir     string `env:"STATIC_DIR,      default=dist"`
	MaxUploadSize string `env:"MAX_UPLOAD_SIZE, default=10M"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=sqlite"`
	DSN    string `env:"STORE_DSN,    default=portal.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=moderation_portal"`
}

// RedisConfig is optional; an empty Addr disables idempotency keys and
// status-change notifications.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// SuperAdminConfig bootstraps one super admin account at startup when Username is set.
type SuperAdminConfig struct {
	Username string `env:"SUPER_ADMIN_USERNAME"`
	Email    string `env:"SUPER_ADMIN_EMAIL"`
	Password string `env:"SUPER_ADMIN_PASSWORD"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("config: JWT_SECRET is required when ENV=%s", c.Env)
		}
		c.JWTSecret = developmentSecret
	}

	switch c.Store.Driver {
	case "sqlite", "postgres", "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("config: STORE_DSN is required for driver %s", c.Store.Driver)
		}
	case "mongo":
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("config: MONGO_URI and MONGO_DB are required for driver mongo")
		}
	default:
		return fmt.Errorf("config: unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive")
	}

	sa := c.SuperAdmin
	if sa.Username != "" && (sa.Email == "" || sa.Password == "") {
		return fmt.Errorf("config: SUPER_ADMIN_EMAIL and SUPER_ADMIN_PASSWORD are required with SUPER_ADMIN_USERNAME")
	}
	return nil
}
