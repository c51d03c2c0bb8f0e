package nrw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFlows() []float64 {
	flows := []float64{20, 15, 12, 10, 14, 18}
	for i := 6; i < 22; i++ {
		flows = append(flows, 40)
	}
	return append(flows, 30, 25)
}

func TestAnalyzeMinimumNightFlow(t *testing.T) {
	res, err := AnalyzeMinimumNightFlow(sampleFlows(), 500, 40, 3.0)
	require.NoError(t, err)

	assert.InDelta(t, 10, res.MinimumFlowM3h, 1e-9)
	assert.Equal(t, 3, res.MNFHour)
	assert.InDelta(t, 12.75, res.AverageNightFlowM3h, 1e-9)
	assert.InDelta(t, 1.5, res.LegitimateNightUseM3h, 1e-9)
	assert.InDelta(t, 8.5, res.BackgroundLeakageM3h, 1e-9)
	assert.InDelta(t, 255, res.DailyLeakageM3, 1e-9)
	assert.InDelta(t, 93075, res.AnnualLeakageM3, 1e-9)
	assert.InDelta(t, 17, res.LeakagePerConnectionLPH, 1e-9)
	assert.InDelta(t, 0.31875, res.NightDayRatio, 1e-9)
	assert.Equal(t, "high", res.Confidence)
}

func TestAnalyzeMinimumNightFlowSmallSystem(t *testing.T) {
	// Small systems with heavy relative night use read as lower
	// confidence.
	flows := sampleFlows()
	res, err := AnalyzeMinimumNightFlow(flows, 150, 40, 0)
	require.NoError(t, err)
	assert.InDelta(t, DefaultLegitimateNightUseLPH*150/1000, res.LegitimateNightUseM3h, 1e-9)
	assert.Equal(t, "medium", res.Confidence)
}

func TestAnalyzeMinimumNightFlowLegitimateUseExceedsMNF(t *testing.T) {
	flows := sampleFlows()
	res, err := AnalyzeMinimumNightFlow(flows, 5000, 40, 3.0)
	require.NoError(t, err)
	assert.Zero(t, res.BackgroundLeakageM3h)
	assert.Zero(t, res.DailyLeakageM3)
}

func TestAnalyzeMinimumNightFlowRejectsShortSeries(t *testing.T) {
	_, err := AnalyzeMinimumNightFlow(make([]float64, 12), 500, 40, 3.0)
	assert.Error(t, err)

	flows := sampleFlows()
	flows[7] = -1
	_, err = AnalyzeMinimumNightFlow(flows, 500, 40, 3.0)
	assert.Error(t, err)
}
