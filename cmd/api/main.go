package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/database"
	"github.com/shishobooks/catalog/pkg/events"
	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/shishobooks/catalog/pkg/search"
	"github.com/shishobooks/catalog/pkg/server"
	"github.com/shishobooks/catalog/pkg/version"
	"github.com/shishobooks/catalog/pkg/worker"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting catalog", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	index, err := search.OpenBleveIndex(cfg.SearchIndexPath)
	if err != nil {
		log.Err(err).Fatal("search index error")
	}
	if cfg.SearchIndexPath == "" {
		log.Warn("search index is memory-only; it will be empty on every start")
	}

	wrkr := worker.New(cfg)
	synchronizer := search.NewSynchronizer(db, index, wrkr)

	bus := events.NewBus()
	bus.Subscribe(synchronizer)

	srv, err := server.New(cfg, db, server.Dependencies{
		Publisher:    bus,
		Index:        index,
		Synchronizer: synchronizer,
	})
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	wrkr.Start()
	log.Info("worker started")

	if cfg.SearchRebuildOnStart || cfg.SearchIndexPath == "" {
		n, err := synchronizer.RebuildAll(ctx)
		if err != nil {
			log.Err(err).Error("search index rebuild failed")
		} else {
			log.Info("search index rebuilt", logger.Data{"documents": n})
		}
	}

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}
		log.Info("server started", logger.Data{"port": listener.Addr().(*net.TCPAddr).Port})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	// Queued index tasks still need the index and the database.
	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = index.Close()
	if err != nil {
		log.Err(err).Error("search index close error")
	}

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
