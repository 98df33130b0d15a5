package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"papertrade/configs"
	"papertrade/internal/adapter/cache"
	"papertrade/internal/database"
	deliveryhttp "papertrade/internal/delivery/http"
	"papertrade/internal/delivery/ops"
	"papertrade/internal/infra"
	"papertrade/internal/middleware"
	"papertrade/internal/repository"
	"papertrade/internal/service"
	"papertrade/internal/usecase"
	"papertrade/internal/utils"
)

var version = "0.1.0"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: .env file not found, using environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "papertrade",
		Short: "Paper stock trading web application",
		Long: `papertrade lets registered users buy and sell stocks at live
quotes with virtual cash and tracks their portfolio and history.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		RunE:  runServe,
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.Load()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := infra.NewDatabase(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			return database.RunMigrations(ctx, db)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("papertrade version %s\n", version)
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configs.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := utils.SetDisplayLocation(cfg.Server.Timezone); err != nil {
		log.Printf("WARNING: Unknown TZ %q, timestamps shown in UTC: %v", cfg.Server.Timezone, err)
	}

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}

	// Quote cache is optional: an unreachable Redis only disables it
	rdb, err := infra.NewRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Printf("WARNING: Redis unavailable, quote cache disabled: %v", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Initialize repositories
	store := repository.NewStore(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize services
	liveQuotes := service.NewQuoteService(cfg.Quote.BaseURL, cfg.Quote.APIKey, cfg.Quote.Timeout)
	displayQuotes := cache.NewQuoteCache(liveQuotes, rdb, cfg.Quote.CacheTTL)

	tradingService := usecase.NewTradingService(store, liveQuotes, displayQuotes)
	authService := usecase.NewAuthService(userRepo, sessionRepo, cfg.Trading.InitialCash, cfg.Session.TTL)

	// Session sweeper
	scheduler := infra.NewScheduler(authService, infra.DefaultSweepSpec)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Stop()

	// Web server
	renderer, err := deliveryhttp.NewTemplateRenderer()
	if err != nil {
		return err
	}
	sessions := middleware.NewSessionManager(cfg.Session.Secret, cfg.Session.Secure, authService)

	e := echo.New()
	e.HideBanner = true
	deliveryhttp.SetupRoutes(e, &deliveryhttp.RouterConfig{
		Renderer:    renderer,
		Sessions:    sessions,
		AuthHandler: deliveryhttp.NewAuthHandler(authService, sessions),
		WebHandler:  deliveryhttp.NewWebHandler(tradingService),
	})

	// Ops server
	checks := map[string]ops.Pinger{"database": db}
	if rdb != nil {
		checks["cache"] = ops.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	opsSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.OpsPort),
		Handler:      ops.NewRouter(checks),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("PaperTrade starting on %s (ops on %s)", addr, opsSrv.Addr)
	log.Printf("Environment: %s", cfg.Server.Env)
	log.Printf("Initial cash: %s", deliveryhttp.USD(cfg.Trading.InitialCash))
	log.Println("========================================")

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	go func() {
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start ops server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Ops server forced to shutdown: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
	return nil
}
