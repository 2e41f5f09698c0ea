package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "ACCOUNTSHOP_APP_ENV"
	EnvPort                   = "ACCOUNTSHOP_APP_PORT"
	EnvDBDSN                  = "ACCOUNTSHOP_DB_DSN"
	EnvDBHost                 = "ACCOUNTSHOP_DB_HOST"
	EnvDBUser                 = "ACCOUNTSHOP_DB_USER"
	EnvDBName                 = "ACCOUNTSHOP_DB_NAME"
	EnvRedisURL               = "ACCOUNTSHOP_REDIS_URL"
	EnvJWTSecret              = "ACCOUNTSHOP_JWT_SECRET"
	EnvJWTIssuer              = "ACCOUNTSHOP_JWT_ISSUER"
	EnvJWTExpMins             = "ACCOUNTSHOP_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ACCOUNTSHOP_REFRESH_TOKEN_TTL_MINUTES"
	EnvVaultKey               = "ACCOUNTSHOP_VAULT_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
