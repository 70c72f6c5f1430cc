package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-store-go/samples/counter"
	"github.com/weegigs/wee-store-go/we"
)

type command int

const (
	unknownCommand command = iota
	incrementCommand
	decrementCommand
	quitCommand
)

func parse(line string) command {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "+", "i", "increment":
		return incrementCommand
	case "-", "d", "decrement":
		return decrementCommand
	case "q", "quit", "exit":
		return quitCommand
	default:
		return unknownCommand
	}
}

// run drives controls from the lines of in until it is exhausted or asked to
// quit, rendering both displays to out.
func run(ctx context.Context, in io.Reader, out io.Writer, logger *zerolog.Logger) error {
	store := counter.NewStore(we.WithLogger[counter.State](logger))
	controls := counter.NewControls(store)

	header := counter.NewDisplay("header", counter.SelectCounter(store), out)
	defer header.Close()
	footer := counter.NewDisplay("footer", counter.SelectCounter(store), out)
	defer footer.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch parse(scanner.Text()) {
		case incrementCommand:
			controls.Increment(ctx)
		case decrementCommand:
			controls.Decrement(ctx)
		case quitCommand:
			return nil
		default:
			logger.Warn().Str("input", scanner.Text()).Msg("expected +, - or q")
		}
	}

	return scanner.Err()
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	if err := run(context.Background(), os.Stdin, os.Stdout, &logger); err != nil {
		log.Fatal().Err(err).Msg("console failed")
	}
}
