package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validateBackend(); err != nil {
		return nil, err
	}
	if cfg.Cart.Backend == CartBackendDB && !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTSTATE_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTSTATE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTSTATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTSTATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"CARTSTATE_DB_DSN"`
	SQLitePath string `envconfig:"CARTSTATE_SQLITE_PATH" default:"cartstate.db"`

	LegacyHost     string `envconfig:"CARTSTATE_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTSTATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTSTATE_DB_USER"`
	LegacyPassword string `envconfig:"CARTSTATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTSTATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTSTATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTSTATE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CARTSTATE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CARTSTATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTSTATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTSTATE_REDIS_URL"`
	Address      string        `envconfig:"CARTSTATE_REDIS_ADDR"`
	Password     string        `envconfig:"CARTSTATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTSTATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTSTATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTSTATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTSTATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTSTATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTSTATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig selects the durable slot backend and its addressing.
type CartConfig struct {
	Backend    string `envconfig:"CARTSTATE_CART_BACKEND" default:"db"`
	StorageKey string `envconfig:"CARTSTATE_CART_STORAGE_KEY" default:"cartstate:items"`

	// CrossSync re-reads the slot when another instance signals a write.
	// Only meaningful with the redis backend.
	CrossSync     bool   `envconfig:"CARTSTATE_CART_CROSS_SYNC" default:"false"`
	SignalChannel string `envconfig:"CARTSTATE_CART_SIGNAL_CHANNEL" default:"cartstate:changed"`
}

func (c CartConfig) validateBackend() error {
	switch c.Backend {
	case CartBackendMemory, CartBackendDB, CartBackendRedis:
		return nil
	}
	return fmt.Errorf("unknown cart backend %q (expected %s, %s or %s)",
		c.Backend, CartBackendMemory, CartBackendDB, CartBackendRedis)
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARTSTATE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARTSTATE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
