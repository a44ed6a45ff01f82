package putaway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3plops/putaway/internal/domain/models"
)

type fakeMover struct {
	calls []string // "unitID->locationID"
	fail  map[string]error
}

func (m *fakeMover) MoveUnit(ctx context.Context, unitID, locationID string) error {
	m.calls = append(m.calls, unitID+"->"+locationID)
	if err := m.fail[unitID]; err != nil {
		return err
	}
	return nil
}

func placedDecision(locationID string) models.PlacementDecision {
	return models.PlacementDecision{
		Location: &models.Location{
			LocationID: locationID,
			Zone:       "Racks", Aisle: "1", Rack: "1", Level: "1B",
			Position: models.PositionBack,
		},
		Tier:       models.TierGeneralWarehouse,
		Rule:       models.RuleBothEmptyUseBack,
		Confidence: 0.95,
	}
}

func newTestExecutor(mover Mover, delay time.Duration) (*Executor, *[]time.Duration) {
	x := NewExecutor(mover, delay, nil)
	var slept []time.Duration
	x.sleep = func(d time.Duration) { slept = append(slept, d) }
	return x, &slept
}

func TestExecuteMovesAndRateLimits(t *testing.T) {
	mover := &fakeMover{}
	x, slept := newTestExecutor(mover, 500*time.Millisecond)

	units := []models.Unit{
		{UnitID: "N100"},
		{UnitID: "N200"},
		{UnitID: "300"},
	}
	for _, unit := range units {
		outcome, err := x.Execute(context.Background(), unit, placedDecision("L1"))
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeMoved, outcome)
	}

	// tag prefix stripped, backend calls in unit order
	assert.Equal(t, []string{"100->L1", "200->L1", "300->L1"}, mover.calls)

	// one fixed delay per backend attempt
	require.Len(t, *slept, 3)
	for _, d := range *slept {
		assert.Equal(t, 500*time.Millisecond, d)
	}
}

func TestExecuteSkipsWithoutLocation(t *testing.T) {
	mover := &fakeMover{}
	x, slept := newTestExecutor(mover, 500*time.Millisecond)

	outcome, err := x.Execute(context.Background(), models.Unit{UnitID: "N1"}, models.PlacementDecision{
		Tier: models.TierNoLocationFound,
	})

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSkippedNoLocation, outcome)
	assert.Empty(t, mover.calls)
	// no backend call, no rate-limit delay
	assert.Empty(t, *slept)
}

func TestExecuteFailureIsIsolatedAndStillDelays(t *testing.T) {
	mover := &fakeMover{fail: map[string]error{"1": errors.New("backend said no")}}
	x, slept := newTestExecutor(mover, 250*time.Millisecond)

	outcome, err := x.Execute(context.Background(), models.Unit{UnitID: "N1"}, placedDecision("L1"))
	assert.Equal(t, models.OutcomeFailed, outcome)
	require.Error(t, err)

	outcome, err = x.Execute(context.Background(), models.Unit{UnitID: "N2"}, placedDecision("L2"))
	assert.Equal(t, models.OutcomeMoved, outcome)
	require.NoError(t, err)

	assert.Len(t, *slept, 2)
}
