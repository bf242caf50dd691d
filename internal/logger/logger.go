package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"Wanderfund/config"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

func Init(cfg *config.Config) {
	Setup(Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON || cfg.IsProduction()})
}

func Setup(opts Options) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	if opts.JSON {
		log = zerolog.New(output).With().Timestamp().Logger()
		return
	}
	log = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// WithComponent returns a child logger tagged with the component field.
func WithComponent(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func Get() *zerolog.Logger {
	return &log
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
