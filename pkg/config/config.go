package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ITEMPURCHASE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv        = "ITEMPURCHASE_APP_ENV"
	EnvPort          = "ITEMPURCHASE_APP_PORT"
	EnvDBDSN         = "ITEMPURCHASE_DB_DSN"
	EnvDBHost        = "ITEMPURCHASE_DB_HOST"
	EnvDBUser        = "ITEMPURCHASE_DB_USER"
	EnvDBName        = "ITEMPURCHASE_DB_NAME"
	EnvRedisURL      = "ITEMPURCHASE_REDIS_URL"
	EnvJWTSecret     = "ITEMPURCHASE_JWT_SECRET"
	EnvJWTIssuer     = "ITEMPURCHASE_JWT_ISSUER"
	EnvJWTExpMins    = "ITEMPURCHASE_JWT_EXPIRATION_MINUTES"
	EnvUnsplashKey   = "ITEMPURCHASE_UNSPLASH_ACCESS_KEY"
	EnvClientBaseURL = "ITEMPURCHASE_CLIENT_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Catalog      CatalogConfig
	Images       ImagesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = cfg.FeatureFlags.SQLitePath
		}
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ITEMPURCHASE_APP_ENV" required:"true"`
	Port         string `envconfig:"ITEMPURCHASE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ITEMPURCHASE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ITEMPURCHASE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ITEMPURCHASE_LOG_WARN_STACK" default:"false"`

	// CORSOrigins is a comma separated allow list.
	CORSOrigins []string `envconfig:"ITEMPURCHASE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ITEMPURCHASE_DB_DSN"`

	LegacyHost     string `envconfig:"ITEMPURCHASE_DB_HOST"`
	LegacyPort     int    `envconfig:"ITEMPURCHASE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ITEMPURCHASE_DB_USER"`
	LegacyPassword string `envconfig:"ITEMPURCHASE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ITEMPURCHASE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ITEMPURCHASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ITEMPURCHASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ITEMPURCHASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ITEMPURCHASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ITEMPURCHASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ITEMPURCHASE_REDIS_URL"`
	Address      string        `envconfig:"ITEMPURCHASE_REDIS_ADDR"`
	Password     string        `envconfig:"ITEMPURCHASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ITEMPURCHASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ITEMPURCHASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ITEMPURCHASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ITEMPURCHASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ITEMPURCHASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ITEMPURCHASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ITEMPURCHASE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ITEMPURCHASE_JWT_ISSUER" default:"itempurchase"`
	ExpirationMinutes int    `envconfig:"ITEMPURCHASE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"ITEMPURCHASE_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"ITEMPURCHASE_SQLITE_PATH" default:"file:itempurchase.db?cache=shared"`
	AutoMigrate bool   `envconfig:"ITEMPURCHASE_AUTO_MIGRATE" default:"false"`
}

type CatalogConfig struct {
	FilterOptionsTTL time.Duration `envconfig:"ITEMPURCHASE_CATALOG_FILTER_OPTIONS_TTL" default:"5m"`
	SearchMaxLength  int           `envconfig:"ITEMPURCHASE_CATALOG_SEARCH_MAX_LENGTH" default:"120"`
}

type ImagesConfig struct {
	UnsplashBaseURL   string        `envconfig:"ITEMPURCHASE_UNSPLASH_BASE_URL" default:"https://api.unsplash.com"`
	UnsplashAccessKey string        `envconfig:"ITEMPURCHASE_UNSPLASH_ACCESS_KEY"`
	CacheTTL          time.Duration `envconfig:"ITEMPURCHASE_IMAGES_CACHE_TTL" default:"24h"`
}

// ClientConfig configures the terminal purchase tool that talks to the API.
type ClientConfig struct {
	Env               string        `envconfig:"ITEMPURCHASE_APP_ENV" default:"dev"`
	LogLevel          string        `envconfig:"ITEMPURCHASE_LOG_LEVEL" default:"info"`
	LogFormat         string        `envconfig:"ITEMPURCHASE_LOG_FORMAT" default:"console"`
	BaseURL           string        `envconfig:"ITEMPURCHASE_CLIENT_BASE_URL" required:"true"`
	Token             string        `envconfig:"ITEMPURCHASE_CLIENT_TOKEN"`
	AccountID         string        `envconfig:"ITEMPURCHASE_CLIENT_ACCOUNT_ID"`
	UserID            string        `envconfig:"ITEMPURCHASE_CLIENT_USER_ID"`
	Timeout           time.Duration `envconfig:"ITEMPURCHASE_CLIENT_TIMEOUT" default:"10s"`
	EnrichmentTimeout time.Duration `envconfig:"ITEMPURCHASE_CLIENT_ENRICHMENT_TIMEOUT" default:"5s"`
	JWTSecret         string        `envconfig:"ITEMPURCHASE_JWT_SECRET"`
	JWTIssuer         string        `envconfig:"ITEMPURCHASE_JWT_ISSUER" default:"itempurchase"`
	JWTExpirationMins int           `envconfig:"ITEMPURCHASE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// LoadClient parses the configuration used by the terminal front-end.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvClientBaseURL, err)
	}
	return &cfg, nil
}

// JWT returns the signing settings used to mint a local development token.
func (c ClientConfig) JWT() JWTConfig {
	return JWTConfig{
		Secret:            c.JWTSecret,
		Issuer:            c.JWTIssuer,
		ExpirationMinutes: c.JWTExpirationMins,
	}
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
