package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls how Init configures the global logger.
type Options struct {
	Production bool
	Output     io.Writer
}

// Init configures the global logger. Production logs JSON at info level,
// anything else logs to a console writer at debug level.
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Production {
		log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).
		With().Timestamp().Caller().Logger().
		Level(zerolog.DebugLevel)
}

// Writer returns the writer behind the global logger, used to route
// third-party request logs through the same sink.
func Writer() io.Writer {
	return log.Logger
}

// Debug starts a debug-level message on the global logger.
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info starts an info-level message on the global logger.
func Info() *zerolog.Event {
	return log.Info()
}

// Warn starts a warn-level message on the global logger.
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error starts an error-level message on the global logger.
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal starts a fatal-level message; sending it exits the process.
func Fatal() *zerolog.Event {
	return log.Fatal()
}
