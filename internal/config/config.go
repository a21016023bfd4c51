package config

import "os"

// Config holds the server process configuration.
type Config struct {
	Port                string
	DBPath              string
	StaticDir           string
	EnvFilePath         string
	FactoryPasswordPath string
	SerialNumberPath    string
	ComposeFilePath     string
	DockerBin           string
	ZoneinfoDir         string
}

// Load returns the server configuration from environment variables
func Load() Config {
	return Config{
		Port:                getEnv("PORT", "8888"),
		DBPath:              getEnv("DB_PATH", "guardian.db"),
		StaticDir:           getEnv("STATIC_DIR", "/app/static"),
		EnvFilePath:         getEnv("ENV_FILE", "/opt/pi-stack/.env"),
		FactoryPasswordPath: getEnv("FACTORY_PASSWORD_FILE", "/opt/pi-stack/.factory-password"),
		SerialNumberPath:    getEnv("SERIAL_NUMBER_FILE", "/opt/pi-stack/.serial-number"),
		ComposeFilePath:     getEnv("COMPOSE_FILE", "/opt/pi-stack/docker-compose.yml"),
		DockerBin:           getEnv("DOCKER_BIN", "/usr/bin/docker"),
		ZoneinfoDir:         getEnv("ZONEINFO_DIR", "/usr/share/zoneinfo"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
