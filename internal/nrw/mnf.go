package nrw

import "fmt"

// Night windows and legitimate-use defaults for MNF analysis. Hour
// indexes follow the flow series: index 0 is midnight.
const (
	nightStartHour = 1
	nightEndHour   = 5 // exclusive
	mnfWindowStart = 2
	mnfWindowEnd   = 4 // exclusive

	DefaultLegitimateNightUseLPH = 3.0

	// Leakage runs higher over the full day than at night because
	// pressure does; simple fixed extrapolation factor.
	nightDayFactor = 1.25
)

// MNFResult is the outcome of a minimum-night-flow analysis.
type MNFResult struct {
	MinimumFlowM3h      float64 `json:"minimum_flow_m3h"`
	MNFHour             int     `json:"mnf_hour"`
	AverageNightFlowM3h float64 `json:"average_night_flow_m3h"`

	LegitimateNightUseM3h   float64 `json:"estimated_legitimate_night_use_m3h"`
	BackgroundLeakageM3h    float64 `json:"estimated_background_leakage_m3h"`
	DailyLeakageM3          float64 `json:"estimated_daily_leakage_m3"`
	AnnualLeakageM3         float64 `json:"annual_leakage_estimate_m3"`
	LeakagePerConnectionLPH float64 `json:"leakage_per_connection_lph"`

	ServiceConnections int     `json:"service_connections"`
	AveragePressureM   float64 `json:"average_pressure_m"`
	NightDayRatio      float64 `json:"night_day_ratio"`
	Confidence         string  `json:"confidence"`
}

// AnalyzeMinimumNightFlow estimates background leakage from a 24-hour
// flow series. The minimum flow in the 02:00-04:00 window, less the
// legitimate night use for the connection count, is attributed to
// leakage and extrapolated to daily and annual volumes.
func AnalyzeMinimumNightFlow(hourlyFlowsM3h []float64, serviceConnections int, averagePressureM, legitimateNightUseLPH float64) (*MNFResult, error) {
	if len(hourlyFlowsM3h) < 24 {
		return nil, fmt.Errorf("at least 24 hourly flow readings required, got %d", len(hourlyFlowsM3h))
	}
	if serviceConnections < 0 {
		return nil, fmt.Errorf("service connections must be non-negative, got %d", serviceConnections)
	}
	for i, f := range hourlyFlowsM3h[:24] {
		if f < 0 {
			return nil, fmt.Errorf("hourly flow %d is negative: %.3f", i, f)
		}
	}
	if legitimateNightUseLPH <= 0 {
		legitimateNightUseLPH = DefaultLegitimateNightUseLPH
	}
	flows := hourlyFlowsM3h[:24]

	minFlow := flows[mnfWindowStart]
	mnfHour := mnfWindowStart
	for h := mnfWindowStart + 1; h < mnfWindowEnd; h++ {
		if flows[h] < minFlow {
			minFlow = flows[h]
			mnfHour = h
		}
	}

	avgNight := mean(flows[nightStartHour:nightEndHour])
	avgDay := mean(flows[6:22])
	nightDayRatio := 1.0
	if avgDay > 0 {
		nightDayRatio = avgNight / avgDay
	}

	legitimateM3h := legitimateNightUseLPH * float64(serviceConnections) / 1000
	background := minFlow - legitimateM3h
	if background < 0 {
		background = 0
	}
	daily := background * 24 * nightDayFactor

	perConnection := 0.0
	if serviceConnections > 0 {
		perConnection = background * 1000 / float64(serviceConnections)
	}

	return &MNFResult{
		MinimumFlowM3h:          minFlow,
		MNFHour:                 mnfHour,
		AverageNightFlowM3h:     avgNight,
		LegitimateNightUseM3h:   legitimateM3h,
		BackgroundLeakageM3h:    background,
		DailyLeakageM3:          daily,
		AnnualLeakageM3:         daily * 365,
		LeakagePerConnectionLPH: perConnection,
		ServiceConnections:      serviceConnections,
		AveragePressureM:        averagePressureM,
		NightDayRatio:           nightDayRatio,
		Confidence:              assessConfidence(minFlow, avgNight, nightDayRatio, serviceConnections),
	}, nil
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// assessConfidence downgrades the estimate for small systems, heavy
// night consumption, and noisy night flows.
func assessConfidence(minFlow, avgNight, nightDayRatio float64, connections int) string {
	score := 100

	switch {
	case connections < 200:
		score -= 15
	case connections < 500:
		score -= 5
	}

	switch {
	case nightDayRatio > 0.4:
		score -= 20
	case nightDayRatio > 0.3:
		score -= 10
	}

	if minFlow > 0 {
		variance := (avgNight - minFlow) / minFlow
		if variance < 0 {
			variance = -variance
		}
		switch {
		case variance > 0.3:
			score -= 15
		case variance > 0.2:
			score -= 5
		}
	}

	switch {
	case score >= 80:
		return "high"
	case score >= 60:
		return "medium"
	default:
		return "low"
	}
}
