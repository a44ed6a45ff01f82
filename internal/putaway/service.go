package putaway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/domain/models"
	"github.com/3plops/putaway/internal/snapshot"
	"github.com/3plops/putaway/pkg/clients/veracore"
)

// ErrRunInFlight is returned when a batch run is requested while another one
// is still working.
var ErrRunInFlight = errors.New("putaway: a run is already in flight")

// Authenticator makes sure a usable backend token is installed before a run.
type Authenticator interface {
	EnsureToken(ctx context.Context) error
}

// ReportSource materializes a named on-demand report into a table.
type ReportSource interface {
	Run(ctx context.Context, reportName string, filters []veracore.ReportFilter) (models.Table, error)
}

// MoveExecutor acts on one placement decision.
type MoveExecutor interface {
	Execute(ctx context.Context, unit models.Unit, decision models.PlacementDecision) (models.MoveOutcome, error)
}

// Decider is the slotting engine surface the service depends on.
type Decider interface {
	Decide(productID, productOwner string, snap *snapshot.Snapshot) models.PlacementDecision
}

// AuditStore persists the audit trail of a completed run.
type AuditStore interface {
	SaveAuditRecords(ctx context.Context, records []models.AuditRecord) error
	SaveRunSummary(ctx context.Context, summary models.RunSummary) error
}

// PlacementExporter publishes the placement report for moved units.
type PlacementExporter interface {
	AppendPlacements(ctx context.Context, records []models.AuditRecord) error
}

// ArchiveExporter archives raw tables and the audit log to object storage.
type ArchiveExporter interface {
	UploadTable(ctx context.Context, reportName string, table models.Table) error
	UploadAuditLog(ctx context.Context, records []models.AuditRecord) error
}

// ArtifactWriter writes the run's local CSV artifacts.
type ArtifactWriter interface {
	WriteTable(filename string, table models.Table) error
	WriteUnits(filename string, units []models.Unit) error
	WritePlacements(records []models.AuditRecord) error
	WriteAuditLog(records []models.AuditRecord) error
}

// ServiceConfig collects the per-run policy the orchestrator needs.
type ServiceConfig struct {
	LocationsReport string
	UnitsReport     string
	Snapshot        snapshot.Options
	// RefreshAfterEachMove updates the occupancy index after every
	// successful move. The default (false) keeps the original stale-read
	// semantics: two units in one batch can be assigned the same slot.
	RefreshAfterEachMove bool
}

// Service orchestrates one putaway batch run: authenticate, pull the two
// reports, build the snapshot, then decide/move/audit every unlocated unit
// in table order. Report and snapshot failures abort the run before any
// moves; per-unit move failures never do.
type Service struct {
	auth     Authenticator
	reports  ReportSource
	executor MoveExecutor
	engine   Decider
	cfg      ServiceConfig
	logger   *zap.Logger

	store     AuditStore
	sheet     PlacementExporter
	archive   ArchiveExporter
	artifacts ArtifactWriter

	mu          sync.Mutex
	running     bool
	lastSummary *models.RunSummary
}

// NewService wires a new putaway service instance.
func NewService(auth Authenticator, reports ReportSource, executor MoveExecutor, engine Decider, cfg ServiceConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		auth:     auth,
		reports:  reports,
		executor: executor,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
	}
}

// AttachSinks installs the optional persistence sinks. Any of them may be
// nil; sink failures are logged and never fail a run.
func (s *Service) AttachSinks(store AuditStore, sheet PlacementExporter, archive ArchiveExporter, artifacts ArtifactWriter) {
	s.store = store
	s.sheet = sheet
	s.archive = archive
	s.artifacts = artifacts
}

// Run executes one full batch. Only one run may be in flight at a time.
func (s *Service) Run(ctx context.Context) (*models.RunSummary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRunInFlight
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	logger.Info("putaway run starting")

	snap, locations, units, err := s.prepare(ctx, logger)
	if err != nil {
		return nil, err
	}

	s.exportInputs(ctx, logger, locations, units, snap)

	audit := NewAudit(runID)

	logger.Info("processing unlocated units", zap.Int("count", len(snap.UnlocatedUnits)))

	for _, unit := range snap.UnlocatedUnits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		decision := s.engine.Decide(unit.ProductID, unit.ProductOwner, snap)
		outcome, moveErr := s.executor.Execute(ctx, unit, decision)

		errMsg := ""
		if moveErr != nil {
			errMsg = moveErr.Error()
		}
		audit.Record(unit, decision, outcome, errMsg, snap.TotalOpen, snap.TotalOccupied)

		if outcome == models.OutcomeMoved && s.cfg.RefreshAfterEachMove {
			snap.MarkOccupied(decision.Location.Key())
		}
	}

	records := audit.Records()
	summary := audit.Summary()

	s.exportOutputs(ctx, logger, records, summary)

	logger.Info("putaway run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("moved", summary.Moved),
		zap.Int("failed", summary.Failed),
		zap.Int("no_location", summary.NoLocation),
		zap.Strings("failed_units", summary.FailedUnits),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))

	s.mu.Lock()
	s.lastSummary = &summary
	s.mu.Unlock()

	return &summary, nil
}

// Recommend pulls fresh reports and returns the engine's decision for the
// product/owner pair without moving anything.
func (s *Service) Recommend(ctx context.Context, productID, productOwner string) (models.PlacementDecision, error) {
	snap, _, _, err := s.prepare(ctx, s.logger.With(zap.String("lookup", productID)))
	if err != nil {
		return models.PlacementDecision{}, err
	}
	return s.engine.Decide(productID, productOwner, snap), nil
}

// LastSummary returns the most recently completed run's aggregates.
func (s *Service) LastSummary() (*models.RunSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSummary == nil {
		return nil, false
	}
	summary := *s.lastSummary
	return &summary, true
}

func (s *Service) prepare(ctx context.Context, logger *zap.Logger) (*snapshot.Snapshot, models.Table, models.Table, error) {
	start := time.Now()

	if err := s.auth.EnsureToken(ctx); err != nil {
		return nil, models.Table{}, models.Table{}, err
	}

	locations, err := s.reports.Run(ctx, s.cfg.LocationsReport, nil)
	if err != nil {
		return nil, models.Table{}, models.Table{}, err
	}

	units, err := s.reports.Run(ctx, s.cfg.UnitsReport, nil)
	if err != nil {
		return nil, models.Table{}, models.Table{}, err
	}

	snap, err := snapshot.Build(locations, units, s.cfg.Snapshot)
	if err != nil {
		return nil, models.Table{}, models.Table{}, err
	}

	logger.Info("snapshot built",
		zap.Int("locations", len(locations.Rows)),
		zap.Int("units", len(units.Rows)),
		zap.Int("located", len(snap.LocatedUnits)),
		zap.Int("unlocated", len(snap.UnlocatedUnits)),
		zap.Int("available_slots", snap.AvailableCount()),
		zap.Duration("elapsed", time.Since(start)))

	return snap, locations, units, nil
}

func (s *Service) exportInputs(ctx context.Context, logger *zap.Logger, locations, units models.Table, snap *snapshot.Snapshot) {
	if s.artifacts != nil {
		if err := s.artifacts.WriteTable("locations.csv", locations); err != nil {
			logger.Error("failed writing locations csv", zap.Error(err))
		}
		if err := s.artifacts.WriteTable("units.csv", units); err != nil {
			logger.Error("failed writing units csv", zap.Error(err))
		}
		if err := s.artifacts.WriteUnits("unlocated_units.csv", snap.UnlocatedUnits); err != nil {
			logger.Error("failed writing unlocated units csv", zap.Error(err))
		}
	}

	if s.archive != nil {
		if err := s.archive.UploadTable(ctx, s.cfg.LocationsReport, locations); err != nil {
			logger.Error("failed archiving locations table", zap.Error(err))
		}
		if err := s.archive.UploadTable(ctx, s.cfg.UnitsReport, units); err != nil {
			logger.Error("failed archiving units table", zap.Error(err))
		}
	}
}

func (s *Service) exportOutputs(ctx context.Context, logger *zap.Logger, records []models.AuditRecord, summary models.RunSummary) {
	if s.artifacts != nil {
		if err := s.artifacts.WritePlacements(records); err != nil {
			logger.Error("failed writing placement report", zap.Error(err))
		}
		if err := s.artifacts.WriteAuditLog(records); err != nil {
			logger.Error("failed writing audit log", zap.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.SaveAuditRecords(ctx, records); err != nil {
			logger.Error("failed saving audit records", zap.Error(err))
		}
		if err := s.store.SaveRunSummary(ctx, summary); err != nil {
			logger.Error("failed saving run summary", zap.Error(err))
		}
	}

	if s.sheet != nil {
		if err := s.sheet.AppendPlacements(ctx, records); err != nil {
			logger.Error("failed appending placements to sheet", zap.Error(err))
		}
	}

	if s.archive != nil {
		if err := s.archive.UploadAuditLog(ctx, records); err != nil {
			logger.Error("failed archiving audit log", zap.Error(err))
		}
	}
}
