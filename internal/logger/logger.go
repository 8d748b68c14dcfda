// Package logger provides JSON structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var globalLogger zerolog.Logger

// Config controls the global logger.
type Config struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"` // "stdout" (default) or "stderr"
	Pretty bool   `yaml:"pretty"`
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init configures the global logger from config. Safe to call once at startup.
func Init(config Config) error {
	var output io.Writer = os.Stdout
	if config.Output == "stderr" {
		output = os.Stderr
	}

	if config.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel

	if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return err
		}
	}

	globalLogger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return nil
}

// GetLogger returns the global logger.
func GetLogger() zerolog.Logger {
	return globalLogger
}

func Debug() *zerolog.Event { return globalLogger.Debug() }

func Info() *zerolog.Event { return globalLogger.Info() }

func Warn() *zerolog.Event { return globalLogger.Warn() }

func Error() *zerolog.Event { return globalLogger.Error() }

func Fatal() *zerolog.Event { return globalLogger.Fatal() }
