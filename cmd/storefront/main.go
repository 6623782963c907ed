package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/karadag/storefront/config"
	"github.com/karadag/storefront/internal/adminapi"
	"github.com/karadag/storefront/internal/app"
	"github.com/karadag/storefront/internal/webserver"
)

// set by -ldflags "-X main.version=..."
var version = "develop"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfile string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfile)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd := &cobra.Command{
		Use:          "storefront",
		Short:        "Karadag spice storefront backend",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	cmd.PersistentFlags().StringVarP(&cfile, "config", "c", "", "config file (default storefront.yml)")

	cmd.AddCommand(serve)
	cmd.AddCommand(&cobra.Command{
		Use:   "initdb",
		Short: "Drop and recreate all tables, then seed the admin and sample catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cfile, func(ctx context.Context, a *app.Application) error {
				return a.InitDb(ctx)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cfile, func(ctx context.Context, a *app.Application) error {
				return a.MigrateDB(ctx)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "storefront", version)
		},
	})
	return cmd
}

// withApplication runs a one-shot database command without the server and jobs
func withApplication(cfile string, fn func(ctx context.Context, a *app.Application) error) error {
	cfg, err := config.LoadConfig(cfile)
	if err != nil {
		return err
	}
	app.InitLogging(cfg)
	a := app.NewApplication(cfg)
	defer a.Release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := fn(ctx, a); err != nil {
		zap.S().Errorf("%v", err)
		return err
	}
	return nil
}

func runServer(parent context.Context, cfg *config.AppConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.NewApplication(cfg)
	a.Init(cfg)
	defer a.Release()

	webserver.Init(a)
	adminapi.Init()

	errc := make(chan error, 1)
	go func() {
		errc <- webserver.Listen()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	zap.S().Info("shutting down storefront")
	if err := webserver.Shutdown(context.Background()); err != nil {
		zap.S().Errorf("web server shutdown: %v", err)
	}
	return nil
}
