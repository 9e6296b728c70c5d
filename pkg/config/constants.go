package config

const (
	EnvPrefix = "GHALA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GHALA_DB_DSN"
	EnvDBHost = "GHALA_DB_HOST"
	EnvDBUser = "GHALA_DB_USER"
	EnvDBName = "GHALA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
