package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/3plops/putaway/internal/config"
	"github.com/3plops/putaway/internal/domain/models"
)

// Repository defines the placement-report export operations supported by the
// Google Sheets adapter.
type Repository interface {
	AppendPlacements(ctx context.Context, records []models.AuditRecord) error
}

// PlacementSheetRepository implements the Repository interface using the official Google Sheets API.
type PlacementSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewPlacementSheetRepository builds a Google Sheets backed repository instance.
func NewPlacementSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &PlacementSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.SheetRange,
		logger:        logger,
	}, nil
}

// AppendPlacements appends one row per successfully moved unit:
// UnitID, ProductID, LocationID, PhysicalLocation, DecisionTier, Confidence.
func (r *PlacementSheetRepository) AppendPlacements(ctx context.Context, records []models.AuditRecord) error {
	var values [][]interface{}
	for _, rec := range records {
		if rec.Outcome != models.OutcomeMoved || rec.Decision.Location == nil {
			continue
		}
		loc := rec.Decision.Location
		values = append(values, []interface{}{
			rec.UnitID,
			rec.ProductID,
			loc.LocationID,
			loc.Physical(),
			string(rec.Decision.Tier),
			rec.Decision.Confidence,
		})
	}

	if len(values) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: values}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append placements into range %s: %w", r.sheetRange, err)
	}

	r.logger.Debug("placements appended to sheet",
		zap.String("range", r.sheetRange),
		zap.Int("rows", len(values)))
	return nil
}
