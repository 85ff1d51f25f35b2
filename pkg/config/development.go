package config

import (
	"os"
	"strconv"
)

const EnvironmentDevelopment = "development"

// loadDevelopmentConfig points a local run at a scratch database with query
// logging on. PORT wins over SERVER_PORT so dev tooling can pick the port.
func loadDevelopmentConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	cfg.DatabaseDebug = true
	cfg.DatabaseFilePath = "./tmp/comics.sqlite"
	cfg.ServerHost = "127.0.0.1"
}
