package commands

import (
	"context"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hangman/internal/chatbot"
	"github.com/robalobadob/hangman/internal/chatbot/wschat"
	"github.com/robalobadob/hangman/internal/database"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/logging"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/telemetry"
	"github.com/robalobadob/hangman/internal/words"
)

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and websocket chat-bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			logging.Setup(os.Stderr, cfg.LogLevel, zerolog.InfoLevel, !cfg.Production())
			return serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default PORT)")
	return cmd
}

func serve(ctx context.Context) error {
	shutdown, err := telemetry.Setup(ctx, cfg.OTelEnabled)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	db, err := database.OpenMigrated(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// An empty words table is seeded from WORDS_FILE (if present) and the
	// built-in list, then edited through /words.
	seed := words.Multi{seedSource()}
	if f := wordsFileSource(); f != nil {
		seed = append(seed, f)
	}
	bank, err := words.NewBank(ctx, database.NewWordStore(db), seed)
	if err != nil {
		return err
	}

	bot := chatbot.New(bank, words.NewRand(rand.Uint64(), rand.Uint64()),
		chatbot.WithMaxIncorrect(cfg.MaxIncorrect))
	srv := httpserver.New(cfg, store.NewMemoryStore(), db, bank,
		httpserver.WithChat(wschat.NewHub(bot, cfg.ClientOrigin)))

	log.Info().
		Str("port", cfg.Port).
		Str("db", cfg.DBPath).
		Int("words", bank.Len()).
		Bool("otel", cfg.OTelEnabled).
		Msg("starting hangman server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
