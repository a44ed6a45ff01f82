package putaway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3plops/putaway/internal/domain/models"
	"github.com/3plops/putaway/internal/slotting"
	"github.com/3plops/putaway/internal/snapshot"
	"github.com/3plops/putaway/pkg/clients/veracore"
)

type stubAuth struct {
	err   error
	calls int
}

func (a *stubAuth) EnsureToken(ctx context.Context) error {
	a.calls++
	return a.err
}

type stubReports struct {
	tables map[string]models.Table
	errs   map[string]error
}

func (r *stubReports) Run(ctx context.Context, reportName string, filters []veracore.ReportFilter) (models.Table, error) {
	if err := r.errs[reportName]; err != nil {
		return models.Table{}, err
	}
	return r.tables[reportName], nil
}

func svcLocRow(id, zone, aisle, rack, level, status string) models.Row {
	return models.Row{
		"Location ID":     id,
		"Zone ID":         zone,
		"Aisle":           aisle,
		"Rack":            rack,
		"Level":           level,
		"Location Status": status,
	}
}

func svcUnitRow(unit, product, owner, zone, aisle, rack, level string) models.Row {
	return models.Row{
		"Unit ID":             unit,
		"Product ID":          product,
		"Product Description": "",
		"Product Owner Name":  owner,
		"Receipt Date":        "",
		"Building":            "",
		"Zone":                zone,
		"Aisle":               aisle,
		"Rack":                rack,
		"Level":               level,
		"Total On Hand":       1,
	}
}

func newTestService(mover Mover, reports *stubReports, refresh bool) *Service {
	executor := NewExecutor(mover, 0, nil)
	executor.sleep = func(d time.Duration) {}

	return NewService(
		&stubAuth{},
		reports,
		executor,
		slotting.NewEngine(slotting.Config{}, nil),
		ServiceConfig{
			LocationsReport:      "west-locations",
			UnitsReport:          "unit-details-ALL",
			Snapshot:             snapshot.Options{Zones: []string{"Racks"}},
			RefreshAfterEachMove: refresh,
		},
		nil,
	)
}

func reportsFixture(locations, units []models.Row) *stubReports {
	return &stubReports{tables: map[string]models.Table{
		"west-locations":   {Rows: locations},
		"unit-details-ALL": {Rows: units},
	}}
}

// One open slot, two unlocated units of the same product. With the default
// stale-snapshot policy both units are assigned the same slot within a run.
func TestRunStaleSnapshotAssignsSameSlotTwice(t *testing.T) {
	reports := reportsFixture(
		[]models.Row{svcLocRow("L1", "Racks", "1", "1", "1B", "OPEN")},
		[]models.Row{
			svcUnitRow("N1", "P1", "Acme", "", "", "", ""),
			svcUnitRow("N2", "P1", "Acme", "", "", "", ""),
		},
	)

	mover := &fakeMover{}
	svc := newTestService(mover, reports, false)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Moved)
	assert.Equal(t, []string{"1->L1", "2->L1"}, mover.calls)
}

func TestRunRefreshAfterEachMove(t *testing.T) {
	reports := reportsFixture(
		[]models.Row{svcLocRow("L1", "Racks", "1", "1", "1B", "OPEN")},
		[]models.Row{
			svcUnitRow("N1", "P1", "Acme", "", "", "", ""),
			svcUnitRow("N2", "P1", "Acme", "", "", "", ""),
		},
	)

	mover := &fakeMover{}
	svc := newTestService(mover, reports, true)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Moved)
	assert.Equal(t, 1, summary.NoLocation)
	assert.Equal(t, []string{"1->L1"}, mover.calls)
}

func TestRunIsolatesMoveFailures(t *testing.T) {
	reports := reportsFixture(
		[]models.Row{
			svcLocRow("L1", "Racks", "1", "1", "1B", "OPEN"),
			svcLocRow("L2", "Racks", "2", "1", "1B", "OPEN"),
		},
		[]models.Row{
			svcUnitRow("N1", "P1", "Acme", "", "", "", ""),
			svcUnitRow("N2", "P2", "Bravo", "", "", "", ""),
		},
	)

	mover := &fakeMover{fail: map[string]error{"1": errors.New("backend said no")}}
	svc := newTestService(mover, reports, false)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Moved)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"N1"}, summary.FailedUnits)
	// the failure did not stop the second unit
	assert.Len(t, mover.calls, 2)

	latest, ok := svc.LastSummary()
	require.True(t, ok)
	assert.Equal(t, summary.RunID, latest.RunID)
}

func TestRunAbortsBeforeMovesOnReportFailure(t *testing.T) {
	reports := reportsFixture(
		[]models.Row{svcLocRow("L1", "Racks", "1", "1", "1B", "OPEN")},
		[]models.Row{svcUnitRow("N1", "P1", "Acme", "", "", "", "")},
	)
	reports.errs = map[string]error{"unit-details-ALL": &veracore.TimeoutError{Report: "unit-details-ALL", Attempts: 20}}

	mover := &fakeMover{}
	svc := newTestService(mover, reports, false)

	_, err := svc.Run(context.Background())
	var timeout *veracore.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Empty(t, mover.calls)

	_, ok := svc.LastSummary()
	assert.False(t, ok)
}

func TestRunAbortsOnMalformedSnapshot(t *testing.T) {
	reports := reportsFixture(
		[]models.Row{{"Location ID": "L1"}}, // missing required columns
		[]models.Row{svcUnitRow("N1", "P1", "Acme", "", "", "", "")},
	)

	mover := &fakeMover{}
	svc := newTestService(mover, reports, false)

	_, err := svc.Run(context.Background())
	var malformed *snapshot.MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Empty(t, mover.calls)
}

type reentrantMover struct {
	svc    *Service
	second error
}

func (m *reentrantMover) MoveUnit(ctx context.Context, unitID, locationID string) error {
	// A run is in flight while the mover works; a second one must be refused.
	_, m.second = m.svc.Run(ctx)
	return nil
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	reports := reportsFixture(
		[]models.Row{svcLocRow("L1", "Racks", "1", "1", "1B", "OPEN")},
		[]models.Row{svcUnitRow("N1", "P1", "Acme", "", "", "", "")},
	)

	mover := &reentrantMover{}
	svc := newTestService(mover, reports, false)
	mover.svc = svc

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, mover.second, ErrRunInFlight)
}

func TestRecommendDoesNotMove(t *testing.T) {
	reports := reportsFixture(
		[]models.Row{svcLocRow("L1", "Racks", "1", "1", "1B", "OPEN")},
		nil,
	)

	mover := &fakeMover{}
	svc := newTestService(mover, reports, false)

	decision, err := svc.Recommend(context.Background(), "P1", "Acme")
	require.NoError(t, err)
	require.True(t, decision.Placed())
	assert.Equal(t, "L1", decision.Location.LocationID)
	assert.Empty(t, mover.calls)
}
