package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shoplens/internal/advisor"
	"shoplens/internal/config"
	"shoplens/internal/logger"
	"shoplens/internal/server"
)

// serveCmd starts the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ShopLens HTTP API",
	Long: `Start the ShopLens API server.

The server provides:
  • AI chat, needs analysis, review summary, and product battle endpoints
  • Static product catalog endpoints
  • Health check endpoint

In the development environment the AI pipelines are mocked and no GCP
credentials are required.

Examples:
  # Start server on default port 8080
  shoplens serve

  # Start on custom port
  shoplens serve --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		host, _ := cmd.Flags().GetString("host")
		return runServe(cmd.Context(), port, host)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (default from config: 8080)")
	serveCmd.Flags().String("host", "", "HTTP server host (default from config: 0.0.0.0)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, port int, host string) error {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Logging.Level)
	log := logger.Get()

	// Override server config from flags if provided
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	// Build the advisor service (mock in development)
	svc, err := advisor.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create advisor service: %w", err)
	}

	srv := server.New(svc, cfg)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal or an error from server
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
