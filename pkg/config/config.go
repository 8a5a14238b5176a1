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
	Storage      StorageConfig
	DB           DBConfig
	Redis        RedisConfig
	Content      ContentConfig
	Cart         CartConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.Backend == StorageBackendSQL {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Storage.Backend == StorageBackendRedis && !cfg.Redis.Enabled() {
		return nil, fmt.Errorf("%s or %s is required for the redis storage backend", EnvRedisURL, EnvRedisAddr)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects where cart and wishlist slots are persisted.
type StorageConfig struct {
	Backend string        `envconfig:"STOREFRONT_STORAGE_BACKEND" default:"memory"`
	SlotTTL time.Duration `envconfig:"STOREFRONT_STORAGE_SLOT_TTL" default:"720h"`
}

func (s *StorageConfig) validate() error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case StorageBackendMemory, StorageBackendRedis, StorageBackendSQL:
		return nil
	}
	return fmt.Errorf("unsupported %s %q (expected memory, redis or sql)", EnvStorageBackend, s.Backend)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// ContentConfig points at the hosted content API serving product records.
type ContentConfig struct {
	ProjectID  string        `envconfig:"STOREFRONT_CONTENT_PROJECT_ID" required:"true"`
	Dataset    string        `envconfig:"STOREFRONT_CONTENT_DATASET" default:"production"`
	APIVersion string        `envconfig:"STOREFRONT_CONTENT_API_VERSION" default:"2025-01-15"`
	UseCDN     bool          `envconfig:"STOREFRONT_CONTENT_USE_CDN" default:"true"`
	Token      string        `envconfig:"STOREFRONT_CONTENT_TOKEN"`
	BaseURL    string        `envconfig:"STOREFRONT_CONTENT_BASE_URL"`
	Timeout    time.Duration `envconfig:"STOREFRONT_CONTENT_TIMEOUT" default:"10s"`
	CacheTTL   time.Duration `envconfig:"STOREFRONT_CONTENT_CACHE_TTL" default:"5m"`
}

// Endpoint returns the query URL root for the configured project and dataset.
func (c ContentConfig) Endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		host := "api"
		if c.UseCDN {
			host = "apicdn"
		}
		base = fmt.Sprintf("https://%s.%s.sanity.io", c.ProjectID, host)
	}
	version := strings.TrimPrefix(strings.TrimSpace(c.APIVersion), "v")
	return fmt.Sprintf("%s/v%s/data/query/%s", base, version, url.PathEscape(c.Dataset))
}

type CartConfig struct {
	DuplicatePolicy  string `envconfig:"STOREFRONT_CART_DUPLICATE_POLICY" default:"merge"`
	PlaceholderImage string `envconfig:"STOREFRONT_CART_PLACEHOLDER_IMAGE" default:"/placeholder.jpg"`
}

// MergeDuplicates reports whether repeated adds increment the existing line.
func (c CartConfig) MergeDuplicates() bool {
	return c.DuplicatePolicy == CartPolicyMerge
}

func (c *CartConfig) validate() error {
	c.DuplicatePolicy = strings.ToLower(strings.TrimSpace(c.DuplicatePolicy))
	switch c.DuplicatePolicy {
	case CartPolicyMerge, CartPolicyDuplicate:
		return nil
	}
	return fmt.Errorf("unsupported %s %q (expected merge or duplicate)", EnvCartDuplicatePolicy, c.DuplicatePolicy)
}

type RateLimitConfig struct {
	MutationWindow time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_MUTATION_WINDOW" default:"1m"`
	MutationLimit  int           `envconfig:"STOREFRONT_RATE_LIMIT_MUTATION_LIMIT" default:"120"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range hostDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
