package db

import (
	"log/slog"
	"time"

	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// NewLogger returns the gorm logger used for every connection. Missing rows
// are a normal lookup result and are not logged.
func NewLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}

func slogWriter() logger.Writer {
	return slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn)
}
