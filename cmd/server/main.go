package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/config"
	"github.com/3plops/putaway/internal/putaway"
	"github.com/3plops/putaway/internal/repository/csvfile"
	"github.com/3plops/putaway/internal/repository/mongodb"
	"github.com/3plops/putaway/internal/repository/s3"
	"github.com/3plops/putaway/internal/repository/sheets"
	"github.com/3plops/putaway/internal/scheduler"
	"github.com/3plops/putaway/internal/server/handlers"
	"github.com/3plops/putaway/internal/server/router"
	"github.com/3plops/putaway/internal/slotting"
	"github.com/3plops/putaway/internal/snapshot"
	"github.com/3plops/putaway/pkg/clients/veracore"
	"github.com/3plops/putaway/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	vcClient := veracore.NewClient(cfg.VeraCore, baseLogger.Named("client.veracore"))
	reportRunner := veracore.NewReportRunner(vcClient, cfg.Reports.PollAttempts, cfg.Reports.PollInterval, baseLogger.Named("client.reports"))

	engine := slotting.NewEngine(slotting.Config{OwnerZones: cfg.Putaway.OwnerZones}, baseLogger.Named("slotting"))
	executor := putaway.NewExecutor(vcClient, cfg.Putaway.MoveDelay, baseLogger.Named("executor"))

	svc := putaway.NewService(vcClient, reportRunner, executor, engine, putaway.ServiceConfig{
		LocationsReport: cfg.Reports.LocationsReport,
		UnitsReport:     cfg.Reports.UnitsReport,
		Snapshot: snapshot.Options{
			Zones:           cfg.Putaway.Zones,
			AllowEmptyInUse: cfg.Putaway.AllowEmptyInUse,
		},
		RefreshAfterEachMove: cfg.Putaway.RefreshAfterEachMove,
	}, baseLogger.Named("svc.putaway"))

	var store putaway.AuditStore
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, audit persistence disabled")
	}

	var sheet putaway.PlacementExporter
	if cfg.Sheets.SpreadsheetID != "" {
		sheetRepo, err := sheets.NewPlacementSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheet = sheetRepo
	}

	var archive putaway.ArchiveExporter
	if cfg.S3.Bucket != "" {
		exporter, err := s3.NewExporter(context.Background(), cfg.S3, baseLogger.Named("repo.s3"))
		if err != nil {
			baseLogger.Fatal("failed to init s3 exporter", zap.Error(err))
		}
		archive = exporter
	} else {
		baseLogger.Warn("s3 bucket missing, report archiving disabled")
	}

	artifacts := csvfile.NewWriter(cfg.Output, baseLogger.Named("repo.csv"))
	svc.AttachSinks(store, sheet, archive, artifacts)

	putawayHandler := handlers.NewPutawayHandler(svc, baseLogger.Named("handlers.putaway"))
	engineRouter := router.New(putawayHandler, baseLogger.Named("router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(cfg.Putaway.CronSchedule, svc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engineRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Minute, // a triggered run blocks the request for its duration
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
