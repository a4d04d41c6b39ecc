package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/credtrack/server/internal/config"
	"github.com/credtrack/server/internal/credtrack/service"
	"github.com/credtrack/server/internal/credtrack/store"
	"github.com/credtrack/server/internal/credtrack/store/memory"
	"github.com/credtrack/server/internal/credtrack/store/postgres"
	"github.com/credtrack/server/internal/credtrack/store/sqlite"
	"github.com/credtrack/server/internal/db"
	"github.com/credtrack/server/internal/httpapi"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "credtrack-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credStore, acctStore, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("store setup: %v", err)
	}
	defer cleanup()

	// Services
	compliance := service.NewComplianceService(credStore, acctStore, nil)
	submissions := service.NewSubmissionService(credStore)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            logger,
		Addr:              cfg.HTTPAddr,
		Compliance:        compliance,
		Submissions:       submissions,
		ActionItemLimit:   cfg.ActionItemLimit,
		RenewalWindowDays: cfg.RenewalWindowDays,
	})

	go func() {
		logger.Printf("listening on %s (store=%s env=%s)", cfg.HTTPAddr, cfg.Store, cfg.Env)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildStores wires the record source selected by config. The returned
// cleanup closes whatever was opened; it is safe to call exactly once.
func buildStores(ctx context.Context, cfg config.Config, logger *log.Logger) (store.CredentialStore, store.AccountStore, func(), error) {
	switch cfg.Store {
	case "memory":
		// Empty stores; useful for smoke tests against a blank slate.
		return memory.NewCredentialStore(nil), memory.NewAccountStore(nil), func() {}, nil

	case "postgres":
		conn, err := db.OpenPostgres(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewCredentialStore(conn), postgres.NewAccountStore(conn), func() { _ = conn.Close() }, nil

	default: // sqlite
		conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.SeedDev && cfg.Env == "dev" {
			if err := db.SeedDev(ctx, conn); err != nil {
				_ = conn.Close()
				return nil, nil, nil, err
			}
			logger.Printf("dev seed applied")
		}
		writer := db.NewWorker(conn)
		cleanup := func() {
			writer.Close()
			_ = conn.Close()
		}
		return sqlite.NewCredentialStore(conn, writer), sqlite.NewAccountStore(conn), cleanup, nil
	}
}
