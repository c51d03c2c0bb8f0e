package energy

import (
	"fmt"
	"time"
)

// Rating buckets for actual-vs-rated efficiency.
const (
	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingFair      = "fair"
	RatingPoor      = "poor"
)

// RatingThresholds are the lower bounds of the excellent/good/fair
// buckets; ratios below Fair are poor. Boundary values belong to the
// higher bucket.
type RatingThresholds struct {
	Excellent float64
	Good      float64
	Fair      float64
}

// DefaultRatingThresholds returns the standard 0.9/0.7/0.5 buckets.
func DefaultRatingThresholds() RatingThresholds {
	return RatingThresholds{Excellent: 0.9, Good: 0.7, Fair: 0.5}
}

// Bucket maps an efficiency ratio to its rating bucket.
func (t RatingThresholds) Bucket(ratio float64) string {
	switch {
	case ratio >= t.Excellent:
		return RatingExcellent
	case ratio >= t.Good:
		return RatingGood
	case ratio >= t.Fair:
		return RatingFair
	default:
		return RatingPoor
	}
}

// OperatingSnapshot is one point-in-time measurement of a running pump.
type OperatingSnapshot struct {
	PumpID             string    `json:"pump_id"`
	FlowRateM3h        float64   `json:"flow_rate_m3h"`
	DischargePressureM float64   `json:"discharge_pressure_m"`
	SuctionPressureM   float64   `json:"suction_pressure_m"`
	PowerKW            float64   `json:"power_kw"`
	FrictionLossM      float64   `json:"friction_loss_m"` // optional, 0 when unknown
	Timestamp          time.Time `json:"timestamp"`
}

// EfficiencyResult is the diagnosis derived from one snapshot.
type EfficiencyResult struct {
	PumpID                string   `json:"pump_id"`
	FlowRateM3h           float64  `json:"flow_rate_m3h"`
	TotalHeadM            float64  `json:"total_head_m"`
	PowerKW               float64  `json:"power_kw"`
	HydraulicPowerKW      float64  `json:"hydraulic_power_kw"`
	WireToWaterEfficiency float64  `json:"wire_to_water_efficiency"`
	RatedEfficiency       float64  `json:"rated_efficiency"`
	EfficiencyRatio       float64  `json:"efficiency_ratio"`
	SpecificEnergyKWhM3   float64  `json:"specific_energy_kwh_m3"`
	Rating                string   `json:"efficiency_rating"`
	DegradationPct        float64  `json:"degradation_percentage"`
	MaintenanceNeeded     bool     `json:"maintenance_recommended"`
	Recommendations       []string `json:"recommendations"`
}

// Analyzer diagnoses pump operating efficiency against the rated value.
// The zero value is not usable; construct with NewAnalyzer.
type Analyzer struct {
	constants  Constants
	thresholds RatingThresholds
}

func NewAnalyzer(c Constants, t RatingThresholds) *Analyzer {
	return &Analyzer{constants: c, thresholds: t}
}

// Analyze computes wire-to-water efficiency for the snapshot and grades
// it against the rated efficiency.
func (a *Analyzer) Analyze(snap OperatingSnapshot, ratedEfficiency float64) (*EfficiencyResult, error) {
	if snap.FlowRateM3h <= 0 {
		return nil, invalidMeasurement("flow rate must be positive, got %.3f", snap.FlowRateM3h)
	}
	if snap.DischargePressureM <= 0 {
		return nil, invalidMeasurement("discharge pressure must be positive, got %.3f", snap.DischargePressureM)
	}
	if snap.SuctionPressureM < 0 {
		return nil, invalidMeasurement("suction pressure must be non-negative, got %.3f", snap.SuctionPressureM)
	}
	if snap.PowerKW < 0 {
		return nil, invalidMeasurement("power must be non-negative, got %.3f", snap.PowerKW)
	}
	if ratedEfficiency <= 0 || ratedEfficiency > 1 {
		return nil, invalidMeasurement("rated efficiency must be in (0,1], got %.3f", ratedEfficiency)
	}

	head, err := TotalDynamicHead(snap.DischargePressureM, snap.SuctionPressureM, snap.FrictionLossM)
	if err != nil {
		return nil, err
	}
	if head < 0 {
		return nil, invalidMeasurement("suction head %.3f exceeds discharge head %.3f", snap.SuctionPressureM, snap.DischargePressureM)
	}
	hydraulicKW, err := a.constants.HydraulicPowerKW(snap.FlowRateM3h, head)
	if err != nil {
		return nil, err
	}
	wireToWater, err := WireToWaterEfficiency(hydraulicKW, snap.PowerKW)
	if err != nil {
		return nil, err
	}
	specific, err := SpecificEnergyKWhM3(snap.PowerKW, snap.FlowRateM3h)
	if err != nil {
		return nil, err
	}

	ratio := wireToWater / ratedEfficiency
	degradation := (1 - ratio) * 100
	if degradation < 0 {
		// Measuring above rated reads as no degradation, not negative.
		degradation = 0
	}
	bucket := a.thresholds.Bucket(ratio)

	return &EfficiencyResult{
		PumpID:                snap.PumpID,
		FlowRateM3h:           snap.FlowRateM3h,
		TotalHeadM:            head,
		PowerKW:               snap.PowerKW,
		HydraulicPowerKW:      hydraulicKW,
		WireToWaterEfficiency: wireToWater,
		RatedEfficiency:       ratedEfficiency,
		EfficiencyRatio:       ratio,
		SpecificEnergyKWhM3:   specific,
		Rating:                bucket,
		DegradationPct:        degradation,
		MaintenanceNeeded:     ratio < a.thresholds.Good,
		Recommendations:       recommendations(bucket, degradation, specific),
	}, nil
}

// recommendations maps every bucket to at least one action so no
// diagnosis comes back without guidance.
func recommendations(bucket string, degradationPct, specificEnergy float64) []string {
	var recs []string
	switch bucket {
	case RatingPoor:
		recs = append(recs, "CRITICAL: efficiency below 50% of rated - evaluate pump rebuild or replacement")
	case RatingFair:
		recs = append(recs, "Significant efficiency loss detected - schedule maintenance inspection within 30 days")
	case RatingGood:
		recs = append(recs, "Minor efficiency degradation - monitor trend and include in next scheduled maintenance")
	default:
		recs = append(recs, "Pump operating within acceptable parameters - continue routine monitoring")
	}
	if degradationPct > 20 {
		recs = append(recs, "Check for worn impeller, excessive clearances, or mechanical seal issues")
	}
	if specificEnergy > 0.5 {
		recs = append(recs, fmt.Sprintf("Specific energy of %.3f kWh/m3 is high - verify pump sizing for current operating conditions", specificEnergy))
	}
	return recs
}
