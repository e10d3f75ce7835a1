package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stash-sh/stash"
	"github.com/stash-sh/stash/config"
	"github.com/stash-sh/stash/database"
	stashhttp "github.com/stash-sh/stash/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the stash HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5709, "HTTP server port")
	serveCmd.Flags().Bool("public", false, "public mode: serve the console and relax the origin check")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	codec, err := buildCodec(cfg)
	if err != nil {
		return err
	}

	repo, closeDB, err := database.Connect(ctx, database.Config{
		Type:     cfg.Database.Type,
		DSN:      cfg.Database.DSN,
		Table:    cfg.Database.Table,
		Attempts: cfg.Database.Attempts,
		Wait:     cfg.Database.WaitDuration(),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB()

	slog.Info("connected to database", "type", cfg.Database.Type)

	handlerConfig := stashhttp.HandlerConfig{
		Codec:         codec,
		SessionTTL:    cfg.Session.TTL,
		PublicMode:    cfg.Server.PublicMode,
		AllowedOrigin: cfg.Admission.AllowedOrigin,
		AllowedIP:     cfg.Admission.AllowedIP,
		Limits: stash.Limits{
			String: cfg.Limits.String,
			JSON:   cfg.Limits.JSON,
			Blob:   cfg.Limits.Blob,
		},
	}

	handler := stashhttp.NewHandler(&handlerConfig, repo)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "public_mode", cfg.Server.PublicMode)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// buildCodec loads the PEM key pair. Any failure here aborts startup:
// keys are configuration, not a per-request concern.
func buildCodec(cfg *config.Config) (*stash.Codec, error) {
	priv, err := os.ReadFile(cfg.Session.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	pub, err := os.ReadFile(cfg.Session.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}

	codec, err := stash.NewCodec(stash.CodecConfig{
		PrivateKeyPEM: priv,
		PublicKeyPEM:  pub,
		Algorithm:     cfg.Session.Algorithm,
		EnforceTTL:    cfg.Session.EnforceTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("build codec: %w", err)
	}

	return codec, nil
}
