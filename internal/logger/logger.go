// Shared logrus setup for the command line tool and the render service
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// TimestampFormat is used by the JSON formatter outside debug mode
const TimestampFormat = "2006-01-02 15:04:05"

// New initializes the logger with the appropriate level and format
func New(debug bool) *logrus.Logger {
	return NewWithOutput(os.Stdout, debug)
}

// NewWithOutput is New writing to out
func NewWithOutput(out io.Writer, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if debug {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		log.Debug("Debug logging enabled")
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: TimestampFormat,
		})
	}

	return log
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}
