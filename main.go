// lemonle: a five-letter guessing game.
//
//	lemonle [serve|play]
//
// serve (default) runs the HTTP/WebSocket server, play runs the game in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/lemonle/internal/config"
	"github.com/robalobadob/lemonle/internal/httpserver"
	"github.com/robalobadob/lemonle/internal/journal"
	"github.com/robalobadob/lemonle/internal/store"
	"github.com/robalobadob/lemonle/internal/tui"
)

func main() {
	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	if mode != "serve" && mode != "play" {
		fmt.Fprintf(os.Stderr, "usage: %s [serve|play]\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	closeLog := setupLogging(cfg, mode)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var jr *journal.Journal
	if cfg.DBPath != "" {
		if jr, err = journal.Open(ctx, cfg.DBPath); err != nil {
			log.Error().Err(err).Str("db", cfg.DBPath).Msg("journal disabled")
			jr = nil
		} else {
			defer jr.Close()
		}
	}

	switch mode {
	case "play":
		var rec tui.Recorder
		if jr != nil {
			rec = jr
		}
		if err := tui.New(cfg, rec).Run(); err != nil {
			log.Error().Err(err).Msg("terminal exited")
			os.Exit(1)
		}
	default:
		// A typed nil would look like a live journal to the server.
		var rec httpserver.Recorder
		if jr != nil {
			rec = jr
		}
		if cfg.InsecureSecret() {
			log.Warn().Msg("JWT_SECRET not set, using the development secret")
		}
		srv := httpserver.New(cfg, store.NewMemoryStore(), rec)
		log.Info().Str("port", cfg.Port).Bool("journal", rec != nil).Msg("starting lemonle server")
		if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
			log.Error().Err(err).Msg("server exited")
			os.Exit(1)
		}
		log.Info().Msg("server stopped")
	}
}

// setupLogging points the global zerolog logger at stderr (serve) or at LOG_FILE,
// if any, in play mode where stderr belongs to the terminal UI.
func setupLogging(cfg config.Config, mode string) func() {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	var out io.Writer = os.Stderr
	closer := func() {}
	if mode == "play" {
		out = io.Discard
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "log file: %v\n", err)
			} else {
				out = f
				closer = func() { _ = f.Close() }
			}
		}
	} else if cfg.LogPretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer
}
