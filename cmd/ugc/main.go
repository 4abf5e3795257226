// Command ugc runs the user-generated-content API: reactions with a
// consistent denormalized rating counter, reviews, bookmarks and movie
// statistics over MongoDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gryroach/ugc-service/internal/api"
	"github.com/gryroach/ugc-service/internal/auth"
	"github.com/gryroach/ugc-service/internal/config"
	"github.com/gryroach/ugc-service/internal/health"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/repository"
	"github.com/gryroach/ugc-service/internal/server"
	"github.com/gryroach/ugc-service/internal/service"
	"github.com/gryroach/ugc-service/internal/storage/mongodb"
)

const envPrefix = "UGC"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "ugc",
		Short: "User-generated-content API service",
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config-file", "c", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewViperLoader(configFile, envPrefix).Load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	rootCmd.AddCommand(serveCmd)

	return rootCmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	level, err := logger.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	format, err := logger.ParseLogFormat(cfg.Log.Format)
	if err != nil {
		return err
	}
	log, err := logger.NewZapLogger(logger.Config{Level: level, Format: format})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := mongodb.NewAdapter(mongodb.Config{
		URL:              cfg.Mongo.URL,
		Database:         cfg.Mongo.Database,
		ConnectTimeout:   cfg.Mongo.ConnectTimeout,
		OperationTimeout: cfg.Mongo.OperationTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("storage close failed", "error", err)
		}
	}()

	if err := store.EnsureIndexes(ctx, repository.CollectionReactions); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	validator, err := auth.NewValidatorFromFile(cfg.Auth.JWTPublicKeyPath)
	if err != nil {
		return fmt.Errorf("load jwt public key: %w", err)
	}

	movies := repository.NewMovieRepository(store, log)
	reviews := repository.NewReviewRepository(store, log)
	bookmarks := repository.NewBookmarkRepository(store, log)
	reactions := repository.NewReactionRepository(store, log)

	registry := health.NewRegistry()
	registry.Register("mongodb", store, 5*time.Second)

	router := api.NewRouter(api.Dependencies{
		Movies:          movies,
		Reviews:         reviews,
		Bookmarks:       bookmarks,
		Reactions:       reactions,
		ReactionService: service.NewReactionService(reactions, movies, reviews, log),
		Statistics:      service.NewStatisticsService(reactions, bookmarks, reviews),
		Auth:            validator,
		Health:          registry,
		Logger:          log,
	})

	return server.New(cfg.HTTP, router, log).Start(ctx)
}
