package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/draftnight/draft-backend/internal/config"
	"github.com/draftnight/draft-backend/internal/engine"
	"github.com/draftnight/draft-backend/internal/httpapi"
	"github.com/draftnight/draft-backend/internal/logging"
	"github.com/draftnight/draft-backend/internal/room"
	"github.com/draftnight/draft-backend/internal/store"
	boltstore "github.com/draftnight/draft-backend/internal/store/bolt"
	pgstore "github.com/draftnight/draft-backend/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.FromContext(ctx)
	if err := realMain(ctx); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreDriver, err)
	}
	defer st.Close()

	// The snapshot, when present, seeds the in-memory state before any
	// request is served; its absence is the normal fresh start.
	initial := engine.NewState(cfg.DraftConfig(), nil)
	snap, err := st.Load()
	switch {
	case err == nil:
		initial = snap.Session
		if initial.Phase == "" {
			initial = engine.NewState(snap.Config, snap.Players)
		}
		logger.Infof("restored draft snapshot from %s", snap.SavedAt)
	case errors.Is(err, store.ErrNotFound):
		logger.Infof("no prior snapshot, starting fresh")
	default:
		return fmt.Errorf("loading snapshot: %w", err)
	}

	rm := room.New(ctx, initial, st)
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.SetupRoutes(rm)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		rm.Inbox() <- room.Shutdown{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return pgstore.Open(cfg.PostgresDSN)
	case "bolt", "":
		return boltstore.Open(cfg.BoltPath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
