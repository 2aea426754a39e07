package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signos-ai/signos/internal/profile"
	"github.com/signos-ai/signos/server"
)

var version = "0.4.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signos",
		Short: "Sign-language translation and learning assistant server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	cmd.PersistentFlags().String("mode", "dev", `server mode, can be "dev" or "prod"`)
	cmd.PersistentFlags().String("addr", "", "address of the server")
	cmd.PersistentFlags().Int("port", 8081, "port of the server")
	cmd.PersistentFlags().String("data", "", "path to the read-only lesson database")

	viper.BindPFlag("mode", cmd.PersistentFlags().Lookup("mode"))
	viper.BindPFlag("addr", cmd.PersistentFlags().Lookup("addr"))
	viper.BindPFlag("port", cmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("data", cmd.PersistentFlags().Lookup("data"))
	viper.SetEnvPrefix("signos")
	viper.AutomaticEnv()

	return cmd
}

func run(ctx context.Context) error {
	p := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Driver:  "sqlite",
		DSN:     viper.GetString("data"),
		Version: version,
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	srv, err := server.New(p, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	return srv.Shutdown(context.Background())
}
