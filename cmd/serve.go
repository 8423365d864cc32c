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

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/event-registration/internal/config"
	"github.com/Shivanand-hulikatti/event-registration/internal/database"
	"github.com/Shivanand-hulikatti/event-registration/internal/handler"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository/memory"
	"github.com/Shivanand-hulikatti/event-registration/internal/service"
	"github.com/Shivanand-hulikatti/event-registration/migrations"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("migrate", true, "apply database migrations before serving (postgres only)")
}

// newService builds the registration service on the configured storage
// driver. The returned cleanup releases any held connections.
func newService(ctx context.Context, cfg config.Config, migrate bool) (*service.RegistrationService, func(), error) {
	if cfg.StorageDriver == config.DriverMemory {
		store := memory.NewStore()
		log.Println("storage driver=memory")
		return service.NewRegistrationService(store, store.Persons(), store.Events(), store.Registrations()), func() {}, nil
	}

	pool, err := database.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	log.Printf("storage driver=postgres host=%s db=%s", cfg.DB.Host, cfg.DB.Name)

	if migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	svc := service.NewRegistrationService(
		repository.NewTransactor(pool),
		repository.NewPersonRepository(pool),
		repository.NewEventRepository(pool),
		repository.NewRegistrationRepository(pool),
	)
	return svc, pool.Close, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	migrate, err := cmd.Flags().GetBool("migrate")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, cleanup, err := newService(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.NewRegistrationHandler(svc).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("server listening addr=%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Println("server stopped")
	return nil
}
