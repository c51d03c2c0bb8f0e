package energy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touScenario is a hand-traced reference case: six cheap overnight hours
// followed by eighteen on-peak hours, with a capacity ceiling tight
// enough that not all cheap hours fit.
func touScenario() ScheduleRequest {
	demand := []float64{10, 8, 6, 5, 5, 8}
	for i := 6; i < 22; i++ {
		demand = append(demand, 30)
	}
	demand = append(demand, 0, 0)

	rates := make([]float64, HorizonHours)
	for i := range rates {
		if i < 6 {
			rates[i] = 0.08
		} else {
			rates[i] = 0.12
		}
	}

	return ScheduleRequest{
		PumpID:            "PUMP-001",
		TankCapacityM3:    500,
		TankCurrentM3:     300,
		TankMinM3:         100,
		PumpFlowRateM3h:   50,
		PumpPowerKW:       22,
		DemandForecastM3h: demand,
		ElectricityRates:  rates,
	}
}

func onHours(res *ScheduleResult) []int {
	var hours []int
	for _, h := range res.Hours {
		if h.PumpOn {
			hours = append(hours, h.Hour)
		}
	}
	return hours
}

func TestOptimizeTOUScenario(t *testing.T) {
	res, err := Optimize(touScenario())
	require.NoError(t, err)

	// Four cheap hours fit before the tank tops out; the remainder
	// lands on the cheapest feasible on-peak hours.
	assert.Equal(t, []int{0, 1, 2, 3, 6, 7, 9}, onHours(res))
	assert.Equal(t, 7.0, res.TotalRuntimeHours)
	assert.Equal(t, res.TotalRuntimeHours*22, res.TotalEnergyKWh)
	assert.InDelta(t, 14.96, res.TotalCost, 1e-9)
	assert.InDelta(t, 52.80, res.BaselineCost, 1e-9)
	assert.InDelta(t, 37.84, res.SavingsAmount, 1e-9)
	assert.InDelta(t, 71.6667, res.SavingsPercent, 0.001)
	assert.InDelta(t, 128, res.MinTankLevelM3, 1e-9)
	assert.InDelta(t, 498, res.MaxTankLevelM3, 1e-9)
}

func TestOptimizeKeepsTankWithinBounds(t *testing.T) {
	req := touScenario()
	res, err := Optimize(req)
	require.NoError(t, err)

	require.Len(t, res.Hours, HorizonHours)
	for _, h := range res.Hours {
		assert.GreaterOrEqual(t, h.TankLevelM3, req.TankMinM3, "hour %d", h.Hour)
		assert.LessOrEqual(t, h.TankLevelM3, req.TankCapacityM3, "hour %d", h.Hour)
	}
}

func TestOptimizeIsDeterministic(t *testing.T) {
	a, err := Optimize(touScenario())
	require.NoError(t, err)
	b, err := Optimize(touScenario())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestOptimizeMoreCapacityNeverCostsMore(t *testing.T) {
	base, err := Optimize(touScenario())
	require.NoError(t, err)

	wider := touScenario()
	wider.TankCapacityM3 = 600
	res, err := Optimize(wider)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.TotalCost, base.TotalCost+1e-9)
}

func TestOptimizeMinimumRuntimeFloor(t *testing.T) {
	rates := make([]float64, HorizonHours)
	for i := range rates {
		rates[i] = 0.10
	}
	rates[5] = 0.05

	req := ScheduleRequest{
		PumpID:            "PUMP-002",
		TankCapacityM3:    1000,
		TankCurrentM3:     500,
		TankMinM3:         100,
		PumpFlowRateM3h:   10,
		PumpPowerKW:       5,
		DemandForecastM3h: make([]float64, HorizonHours),
		ElectricityRates:  rates,
		MinRuntimeHours:   4,
	}
	res, err := Optimize(req)
	require.NoError(t, err)

	// No demand means nothing is mandatory: the floor is filled with
	// the cheapest hours, ties broken by earliest hour.
	assert.Equal(t, []int{0, 1, 2, 5}, onHours(res))
	assert.Equal(t, 4.0, res.TotalRuntimeHours)
	assert.InDelta(t, 5*(0.05+3*0.10), res.TotalCost, 1e-9)
	assert.Zero(t, res.BaselineCost)
	assert.Zero(t, res.SavingsPercent)
}

func TestOptimizeInfeasibleDemand(t *testing.T) {
	demand := make([]float64, HorizonHours)
	for i := range demand {
		demand[i] = 50
	}
	rates := make([]float64, HorizonHours)
	for i := range rates {
		rates[i] = 0.10
	}

	_, err := Optimize(ScheduleRequest{
		PumpID:            "PUMP-003",
		TankCapacityM3:    410,
		TankCurrentM3:     405,
		TankMinM3:         400,
		PumpFlowRateM3h:   1,
		PumpPowerKW:       15,
		DemandForecastM3h: demand,
		ElectricityRates:  rates,
	})
	require.Error(t, err)

	var engineErr *Error
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, KindInfeasibleSchedule, engineErr.Kind)
	require.NotEmpty(t, engineErr.PartialTrajectory)
	first := engineErr.PartialTrajectory[0]
	assert.Equal(t, 0, first.Hour)
	assert.True(t, first.PumpOn)
	assert.InDelta(t, 356, first.TankLevelM3, 1e-9)
}

func TestOptimizeRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScheduleRequest)
	}{
		{name: "short demand forecast", mutate: func(r *ScheduleRequest) { r.DemandForecastM3h = r.DemandForecastM3h[:12] }},
		{name: "short rate curve", mutate: func(r *ScheduleRequest) { r.ElectricityRates = r.ElectricityRates[:23] }},
		{name: "minimum above capacity", mutate: func(r *ScheduleRequest) { r.TankMinM3 = 600 }},
		{name: "level above capacity", mutate: func(r *ScheduleRequest) { r.TankCurrentM3 = 700 }},
		{name: "negative demand", mutate: func(r *ScheduleRequest) { r.DemandForecastM3h[3] = -1 }},
		{name: "negative rate", mutate: func(r *ScheduleRequest) { r.ElectricityRates[10] = -0.01 }},
		{name: "zero flow", mutate: func(r *ScheduleRequest) { r.PumpFlowRateM3h = 0 }},
		{name: "zero power", mutate: func(r *ScheduleRequest) { r.PumpPowerKW = 0 }},
		{name: "runtime floor above horizon", mutate: func(r *ScheduleRequest) { r.MinRuntimeHours = 25 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := touScenario()
			tc.mutate(&req)
			_, err := Optimize(req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, &Error{Kind: KindInvalidRequest}), "got %v", err)
		})
	}
}
