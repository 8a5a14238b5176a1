package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageBackendMemory = "memory"
	StorageBackendRedis  = "redis"
	StorageBackendSQL    = "sql"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	CartPolicyMerge     = "merge"
	CartPolicyDuplicate = "duplicate"
)

const (
	EnvAppEnv              = "STOREFRONT_APP_ENV"
	EnvPort                = "STOREFRONT_APP_PORT"
	EnvStorageBackend      = "STOREFRONT_STORAGE_BACKEND"
	EnvDBDSN               = "STOREFRONT_DB_DSN"
	EnvDBDriver            = "STOREFRONT_DB_DRIVER"
	EnvDBHost              = "STOREFRONT_DB_HOST"
	EnvDBUser              = "STOREFRONT_DB_USER"
	EnvDBName              = "STOREFRONT_DB_NAME"
	EnvDBPassword          = "STOREFRONT_DB_PASSWORD"
	EnvRedisURL            = "STOREFRONT_REDIS_URL"
	EnvRedisAddr           = "STOREFRONT_REDIS_ADDR"
	EnvContentProjectID    = "STOREFRONT_CONTENT_PROJECT_ID"
	EnvContentDataset      = "STOREFRONT_CONTENT_DATASET"
	EnvContentUseCDN       = "STOREFRONT_CONTENT_USE_CDN"
	EnvCartDuplicatePolicy = "STOREFRONT_CART_DUPLICATE_POLICY"
	EnvCORSAllowedOrigins  = "STOREFRONT_CORS_ALLOWED_ORIGINS"
)

var hostDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
