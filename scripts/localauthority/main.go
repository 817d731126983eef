// Runs the in-process stub authority standalone, for developing the
// client against a local server.
package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vovakirdan/roomsync/internal/log"
	"github.com/vovakirdan/roomsync/internal/stub"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(*level)
	authority := stub.New(logger)

	server := &http.Server{
		Addr:              *addr,
		Handler:           authority.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	stdlog.Printf("stub authority listening on %s", *addr)
	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			stdlog.Fatalf("server exited with error: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			stdlog.Printf("shutdown: %v", err)
		}
	}
	stdlog.Println("stub authority stopped")
}
