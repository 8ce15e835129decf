package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"

	"image-stylizer/internal/logger"
)

func TestWaitForInterruptCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitForInterrupt(ctx); !errors.Is(err, ErrCanceled) {
		t.Fatalf("wrong error %v", err)
	}
}

func TestWaitForSignal(t *testing.T) {
	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGTERM

	err := waitFor(context.Background(), signals)

	var signalErr *SignalError
	if !errors.As(err, &signalErr) || signalErr.Signal != syscall.SIGTERM {
		t.Fatalf("wrong error %v", err)
	}
	if err.Error() != "received signal terminated" {
		t.Fatalf("wrong message %q", err)
	}
}

func TestShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	server := &http.Server{Handler: http.NotFoundHandler()}
	served := make(chan error, 1)
	go func() {
		served <- server.Serve(listener)
	}()

	Shutdown(server, logger.Discard())

	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("wrong serve error %v", err)
	}
}
