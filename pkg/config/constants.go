package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	CartBackendMemory = "memory"
	CartBackendDB     = "db"
	CartBackendRedis  = "redis"

	EnvAppEnv      = "CARTSTATE_APP_ENV"
	EnvPort        = "CARTSTATE_APP_PORT"
	EnvDBDSN       = "CARTSTATE_DB_DSN"
	EnvDBHost      = "CARTSTATE_DB_HOST"
	EnvDBUser      = "CARTSTATE_DB_USER"
	EnvDBName      = "CARTSTATE_DB_NAME"
	EnvRedisURL    = "CARTSTATE_REDIS_URL"
	EnvCartBackend = "CARTSTATE_CART_BACKEND"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
