package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL      string `envconfig:"DATABASE_URL"       required:"true"`
	HTTPPort         string `envconfig:"HTTP_PORT"          default:":8080"`
	LogLevel         string `envconfig:"LOG_LEVEL"          default:"info"`
	UploadDir        string `envconfig:"UPLOAD_DIR"         default:"./uploads"`
	MaxUploadBytes   int64  `envconfig:"MAX_UPLOAD_BYTES"   default:"5242880"`
	DBTimeoutSeconds int    `envconfig:"DB_TIMEOUT_SECONDS" default:"10"`
}

// DBTimeout bounds each coordinator operation's database window.
func (c *Config) DBTimeout() time.Duration {
	return time.Duration(c.DBTimeoutSeconds) * time.Second
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: HTTP Port=%s, LogLevel=%s, UploadDir=%s",
			config.HTTPPort, config.LogLevel, config.UploadDir)
	})
	return &config
}
