package logger

import (
	"io"
	"os"

	"rozes-gallery/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger оборачивает logrus с настройками из конфигурации.
type Logger struct {
	*logrus.Logger
}

// New создает логгер с уровнем, форматом и файлом из конфигурации.
func New(cfg *config.LoggerConfig) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	var output io.Writer = os.Stdout
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).Warn("Failed to open log file, falling back to stdout")
		} else {
			output = file
		}
	}
	log.SetOutput(output)

	return &Logger{Logger: log}
}
