package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-store-go/support"
)

func run(ctx context.Context, envFile string) error {
	cfg, err := support.LoadConfig(envFile)
	if err != nil {
		return err
	}

	server, cleanup, err := initializeServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	failed := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Address).Msg("listening")
		failed <- server.ListenAndServe()
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdown); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *envFile); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
