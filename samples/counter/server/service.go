package main

import (
	"context"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/weegigs/wee-store-go/connectors/wehttp"
	"github.com/weegigs/wee-store-go/samples/counter"
	"github.com/weegigs/wee-store-go/support"
	"github.com/weegigs/wee-store-go/we"
)

const serviceName = "counter"

func tracing(ctx context.Context, cfg support.Config) (*sdktrace.TracerProvider, func(), error) {
	return support.TracerProvider(ctx, cfg, serviceName)
}

func NewCounterStore(logger *zerolog.Logger, provider *sdktrace.TracerProvider) *counter.Store {
	options := []we.StoreOption[counter.State]{we.WithLogger[counter.State](logger)}
	if provider != nil {
		options = append(options, we.WithTracer[counter.State](provider.Tracer(serviceName)))
	}

	return counter.NewStore(options...)
}

func NewHandler(store *counter.Store, logger *zerolog.Logger) http.Handler {
	return withLogging(wehttp.NewHandler(store, wehttp.Logger[counter.State](logger)))
}

func NewServer(cfg support.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

var service = wire.NewSet(
	support.NewLogger,
	tracing,
	NewCounterStore,
	NewHandler,
	NewServer,
)
