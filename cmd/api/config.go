package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/TimeMint/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"API_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"info"`
	LogFormat       string        `env:"APP_LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`

	Storage config.StorageConfig
	Game    config.GameConfig
}
