// Package csvfile writes the run's local CSV artifacts: raw report tables,
// the unlocated-units extract, the placement report, and the audit log.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/config"
	"github.com/3plops/putaway/internal/domain/models"
)

// Writer persists CSV files under the configured output folder.
type Writer struct {
	folder string
	now    func() time.Time
	logger *zap.Logger
}

// NewWriter builds a writer rooted at the configured folder.
func NewWriter(cfg config.OutputConfig, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{folder: cfg.Folder, now: time.Now, logger: logger}
}

func (w *Writer) write(filename string, header []string, rows [][]string) error {
	if err := os.MkdirAll(w.folder, 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}

	path := filepath.Join(w.folder, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header of %s: %w", path, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row of %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	w.logger.Info("csv written", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

// WriteTable persists a raw report table. Column order is alphabetical since
// report rows arrive as unordered objects.
func (w *Writer) WriteTable(filename string, table models.Table) error {
	if len(table.Rows) == 0 {
		return w.write(filename, nil, nil)
	}

	header := make([]string, 0, len(table.Rows[0]))
	for col := range table.Rows[0] {
		header = append(header, col)
	}
	sort.Strings(header)

	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		out := make([]string, len(header))
		for j, col := range header {
			out[j] = row.Str(col)
		}
		rows[i] = out
	}

	return w.write(filename, header, rows)
}

// WriteUnits persists a unit extract with every Unit column.
func (w *Writer) WriteUnits(filename string, units []models.Unit) error {
	header := []string{
		"Unit ID", "Product ID", "Product Description", "Product Owner Name",
		"Receipt Date", "Building", "Zone", "Aisle", "Rack", "Level", "Total On Hand",
	}

	rows := make([][]string, len(units))
	for i, u := range units {
		rows[i] = []string{
			u.UnitID, u.ProductID, u.ProductDescription, u.ProductOwner,
			u.ReceiptDate, u.Building, u.Zone, u.Aisle, u.Rack, u.Level,
			strconv.FormatFloat(u.OnHandQty, 'f', -1, 64),
		}
	}

	return w.write(filename, header, rows)
}

// WritePlacements persists the placement report for moved units.
func (w *Writer) WritePlacements(records []models.AuditRecord) error {
	header := []string{"Unit ID", "Product ID", "Location ID", "Physical Location", "Decision Tier", "Confidence"}

	var rows [][]string
	for _, rec := range records {
		if rec.Outcome != models.OutcomeMoved || rec.Decision.Location == nil {
			continue
		}
		loc := rec.Decision.Location
		rows = append(rows, []string{
			rec.UnitID,
			rec.ProductID,
			loc.LocationID,
			loc.Physical(),
			string(rec.Decision.Tier),
			strconv.FormatFloat(rec.Decision.Confidence, 'f', 2, 64),
		})
	}

	if len(rows) == 0 {
		return nil
	}

	return w.write("placement_report.csv", header, rows)
}

// WriteAuditLog persists the timestamped per-unit decision log.
func (w *Writer) WriteAuditLog(records []models.AuditRecord) error {
	header := []string{
		"Timestamp", "Run ID", "Unit ID", "Product ID", "Product Description",
		"Product Owner", "Receipt Date", "Decision Tier", "Rule", "Confidence",
		"Assigned Location ID", "Assigned Zone", "Assigned Aisle", "Assigned Rack",
		"Assigned Level", "Front Occupied", "Back Occupied", "Alternatives Considered",
		"Existing Units Same Product", "Existing Units Same Owner", "Reason",
		"Outcome", "Error Message", "Total Open", "Total Occupied",
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		var locID, zone, aisle, rack, level string
		if loc := rec.Decision.Location; loc != nil {
			locID, zone, aisle, rack, level = loc.LocationID, loc.Zone, loc.Aisle, loc.Rack, loc.Level
		}
		rows[i] = []string{
			rec.Timestamp.Format(time.RFC3339),
			rec.RunID,
			rec.UnitID,
			rec.ProductID,
			rec.ProductDescription,
			rec.ProductOwner,
			rec.ReceiptDate,
			string(rec.Decision.Tier),
			string(rec.Decision.Rule),
			strconv.FormatFloat(rec.Decision.Confidence, 'f', 2, 64),
			locID, zone, aisle, rack, level,
			strconv.FormatBool(rec.Decision.FrontOccupied),
			strconv.FormatBool(rec.Decision.BackOccupied),
			strconv.Itoa(rec.Decision.AlternativesConsidered),
			strconv.Itoa(rec.Decision.SameProductUnits),
			strconv.Itoa(rec.Decision.SameOwnerUnits),
			rec.Decision.Reason,
			string(rec.Outcome),
			rec.ErrorMessage,
			strconv.Itoa(rec.TotalOpen),
			strconv.Itoa(rec.TotalOccupied),
		}
	}

	filename := fmt.Sprintf("putaway_log_%s.csv", w.now().Format("20060102_150405"))
	return w.write(filename, header, rows)
}
