// Command putaway executes a single batch run and exits: pull the locations
// and unit-details reports, slot every unlocated unit, move them, write the
// artifacts. Intended for manual runs and external cron.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/config"
	"github.com/3plops/putaway/internal/putaway"
	"github.com/3plops/putaway/internal/repository/csvfile"
	"github.com/3plops/putaway/internal/repository/mongodb"
	"github.com/3plops/putaway/internal/repository/s3"
	"github.com/3plops/putaway/internal/repository/sheets"
	"github.com/3plops/putaway/internal/slotting"
	"github.com/3plops/putaway/internal/snapshot"
	"github.com/3plops/putaway/pkg/clients/veracore"
	"github.com/3plops/putaway/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "path to an optional .env file")
	dryRun := flag.Bool("dry-run", false, "decide and report without calling the move endpoint")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	vcClient := veracore.NewClient(cfg.VeraCore, baseLogger.Named("client.veracore"))
	reportRunner := veracore.NewReportRunner(vcClient, cfg.Reports.PollAttempts, cfg.Reports.PollInterval, baseLogger.Named("client.reports"))

	engine := slotting.NewEngine(slotting.Config{OwnerZones: cfg.Putaway.OwnerZones}, baseLogger.Named("slotting"))

	var mover putaway.Mover = vcClient
	if *dryRun {
		baseLogger.Info("dry run: moves will not be issued")
		mover = noopMover{}
	}
	executor := putaway.NewExecutor(mover, cfg.Putaway.MoveDelay, baseLogger.Named("executor"))

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
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	}

	var sheet putaway.PlacementExporter
	if cfg.Sheets.SpreadsheetID != "" {
		sheetRepo, err := sheets.NewPlacementSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheet = sheetRepo
	}

	var archive putaway.ArchiveExporter
	if cfg.S3.Bucket != "" {
		exporter, err := s3.NewExporter(ctx, cfg.S3, baseLogger.Named("repo.s3"))
		if err != nil {
			baseLogger.Fatal("failed to init s3 exporter", zap.Error(err))
		}
		archive = exporter
	}

	svc.AttachSinks(store, sheet, archive, csvfile.NewWriter(cfg.Output, baseLogger.Named("repo.csv")))

	summary, err := svc.Run(ctx)
	if err != nil {
		baseLogger.Fatal("putaway run failed", zap.Error(err))
	}

	baseLogger.Info("putaway run complete",
		zap.Int("processed", summary.Processed),
		zap.Int("moved", summary.Moved),
		zap.Int("failed", summary.Failed),
		zap.Int("no_location", summary.NoLocation),
		zap.Strings("failed_units", summary.FailedUnits))
}

type noopMover struct{}

func (noopMover) MoveUnit(ctx context.Context, unitID, locationID string) error {
	return nil
}
