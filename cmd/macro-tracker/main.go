package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mcp-macro-tracker/internal/config"
	"mcp-macro-tracker/internal/server"
)

// Set via ldflags at build time.
var version = "1.0.0"

var (
	flagHost   string
	flagPort   int
	flagDBPath string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:          "macro-tracker",
	Short:        "MCP server for tracking daily macros",
	Long:         "macro-tracker — an MCP server for setting daily macro goals, keeping a reference food database, logging intake and reviewing meals.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	defaults := config.Default()
	rootCmd.Flags().StringVar(&flagHost, "host", defaults.Host, "Host address to listen on")
	rootCmd.Flags().IntVar(&flagPort, "port", defaults.Port, "Port for the HTTP transport")
	rootCmd.Flags().StringVar(&flagDBPath, "db-path", defaults.DBPath, "Path to the SQLite database file")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("macro-tracker version %s\n", version))
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.LoadEnv()

	// Flags beat env beats defaults.
	if cmd.Flags().Changed("host") {
		cfg.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("db-path") {
		cfg.DBPath = flagDBPath
	}

	level := zerolog.InfoLevel
	if flagDebug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	srv, err := server.NewMacroTrackerServer(&server.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		DBPath: cfg.DBPath,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Info().Msg("received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	log.Info().Msg("shutting down")
	cancel()
	return srv.Stop()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
