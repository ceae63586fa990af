package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/reds-and-greens/internal/accounts"
	"github.com/DoyleJ11/reds-and-greens/internal/config"
	"github.com/DoyleJ11/reds-and-greens/internal/engine"
	"github.com/DoyleJ11/reds-and-greens/internal/httpapi"
	"github.com/DoyleJ11/reds-and-greens/internal/lobby"
	"github.com/DoyleJ11/reds-and-greens/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const releaseVersion = "0.1.0"

func main() {
	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reds-and-greens",
		Short:   "Serves one game of reds and greens over HTTP.",
		Args:    cobra.NoArgs,
		Version: releaseVersion,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ApplyEnv(cmd.Flags(), ".env"); err != nil {
				return err
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	config.RegisterFlags(cmd.Flags(), cfg)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("reds-and-greens v{{.Version}}\n")
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func run(parent context.Context, cfg *config.Config) (err error) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var opts []engine.Option
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))))
	}
	game, err := engine.New(cfg.Players, cfg.Reds, opts...)
	if err != nil {
		return err
	}
	// The lobby outlives the signal so in-flight requests can finish
	// during shutdown.
	lobbyCtx, stopLobby := context.WithCancel(context.Background())
	defer stopLobby()
	lb := lobby.NewLobby(lobbyCtx, game, log)

	deps := httpapi.Deps{Games: lb, Logger: log, Release: releaseVersion}
	if cfg.DatabaseURL != "" {
		store, openErr := accounts.Open(ctx, cfg.DatabaseURL)
		if openErr != nil {
			return openErr
		}
		defer multierr.AppendInvoke(&err, multierr.Close(store))
		deps.Accounts = store
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.SetupRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	log.Info("starting",
		zap.String("version", releaseVersion),
		zap.String("addr", srv.Addr),
		zap.Int("players", cfg.Players),
		zap.Int("reds", game.NominatedMinority()),
		zap.Bool("accounts", deps.Accounts != nil),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
