// Process lifecycle helpers for the render service
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// Server timeouts. HandlerTimeout bounds a single render request.
const (
	ReadTimeout    = 30 * time.Second
	WriteTimeout   = time.Minute
	HandlerTimeout = 45 * time.Second
)

// ErrCanceled is returned when the context ends before a signal arrives
var ErrCanceled = errors.New("canceled")

// SignalError carries the signal that asked the process to stop
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return "received signal " + e.Signal.String()
}

// WaitForInterrupt blocks until SIGINT or SIGTERM arrives or ctx ends
func WaitForInterrupt(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)

	return waitFor(ctx, c)
}

func waitFor(ctx context.Context, signals <-chan os.Signal) error {
	select {
	case sig := <-signals:
		return &SignalError{Signal: sig}
	case <-ctx.Done():
		return ErrCanceled
	}
}

// Shutdown stops server from accepting requests and gives the ones in flight until WriteTimeout to finish
func Shutdown(server *http.Server, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("error shutting down the http server")
	}
}
