// Package nrw implements the IWA water-balance methodology for
// quantifying non-revenue water, plus minimum-night-flow leakage
// estimation. Everything is a pure function of its inputs; the REST
// layer feeds it meter-reading totals.
package nrw

import (
	"fmt"
	"time"
)

// BalanceInput carries the metered and estimated volumes for one
// balance period, all in m³.
type BalanceInput struct {
	SystemInputVolumeM3 float64 `json:"system_input_volume"`

	BilledMeteredM3     float64 `json:"billed_metered_consumption"`
	BilledUnmeteredM3   float64 `json:"billed_unmetered_consumption"`
	UnbilledMeteredM3   float64 `json:"unbilled_metered_consumption"`
	UnbilledUnmeteredM3 float64 `json:"unbilled_unmetered_consumption"`

	UnauthorizedConsumptionM3 float64 `json:"unauthorized_consumption"`
	MeterInaccuraciesM3       float64 `json:"meter_inaccuracies"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// Balance is the computed IWA water balance. Real losses are the
// remainder after authorized consumption and apparent losses.
type Balance struct {
	SystemInputVolumeM3 float64 `json:"system_input_volume"`

	BilledAuthorizedM3   float64 `json:"billed_authorized_consumption"`
	UnbilledAuthorizedM3 float64 `json:"unbilled_authorized_consumption"`
	AuthorizedM3         float64 `json:"authorized_consumption"`

	ApparentLossesM3 float64 `json:"apparent_losses"`
	RealLossesM3     float64 `json:"real_losses"`
	WaterLossesM3    float64 `json:"water_losses"`

	RevenueWaterM3    float64 `json:"revenue_water"`
	NonRevenueWaterM3 float64 `json:"non_revenue_water"`

	NRWPercent            float64 `json:"nrw_percentage"`
	RealLossesPercent     float64 `json:"real_losses_percentage"`
	ApparentLossesPercent float64 `json:"apparent_losses_percentage"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	PeriodDays  int       `json:"period_days"`
}

// CalculateBalance computes the standard IWA water balance:
//
//	System Input = Authorized Consumption + Apparent Losses + Real Losses
//
// Real losses are derived as the remainder, clamped at zero when the
// estimates overshoot the input volume.
func CalculateBalance(in BalanceInput) (*Balance, error) {
	if in.SystemInputVolumeM3 <= 0 {
		return nil, fmt.Errorf("system input volume must be positive, got %.3f", in.SystemInputVolumeM3)
	}
	for name, v := range map[string]float64{
		"billed metered":     in.BilledMeteredM3,
		"billed unmetered":   in.BilledUnmeteredM3,
		"unbilled metered":   in.UnbilledMeteredM3,
		"unbilled unmetered": in.UnbilledUnmeteredM3,
		"unauthorized":       in.UnauthorizedConsumptionM3,
		"meter inaccuracies": in.MeterInaccuraciesM3,
	} {
		if v < 0 {
			return nil, fmt.Errorf("%s consumption must be non-negative, got %.3f", name, v)
		}
	}
	if in.PeriodEnd.Before(in.PeriodStart) {
		return nil, fmt.Errorf("period end %s before start %s", in.PeriodEnd.Format("2006-01-02"), in.PeriodStart.Format("2006-01-02"))
	}

	billedAuth := in.BilledMeteredM3 + in.BilledUnmeteredM3
	unbilledAuth := in.UnbilledMeteredM3 + in.UnbilledUnmeteredM3
	authorized := billedAuth + unbilledAuth
	apparent := in.UnauthorizedConsumptionM3 + in.MeterInaccuraciesM3

	real := in.SystemInputVolumeM3 - authorized - apparent
	if real < 0 {
		real = 0
	}

	nonRevenue := in.SystemInputVolumeM3 - billedAuth

	return &Balance{
		SystemInputVolumeM3:   in.SystemInputVolumeM3,
		BilledAuthorizedM3:    billedAuth,
		UnbilledAuthorizedM3:  unbilledAuth,
		AuthorizedM3:          authorized,
		ApparentLossesM3:      apparent,
		RealLossesM3:          real,
		WaterLossesM3:         apparent + real,
		RevenueWaterM3:        billedAuth,
		NonRevenueWaterM3:     nonRevenue,
		NRWPercent:            pct(nonRevenue, in.SystemInputVolumeM3),
		RealLossesPercent:     pct(real, in.SystemInputVolumeM3),
		ApparentLossesPercent: pct(apparent, in.SystemInputVolumeM3),
		PeriodStart:           in.PeriodStart,
		PeriodEnd:             in.PeriodEnd,
		PeriodDays:            int(in.PeriodEnd.Sub(in.PeriodStart).Hours()/24) + 1,
	}, nil
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// ILI rating breakpoints per the IWA benchmark table.
const (
	iliExcellentBelow = 2.0
	iliGoodBelow      = 4.0
	iliAverageBelow   = 8.0
)

// LeakageIndex compares current annual real losses against the
// unavoidable minimum for the network.
type LeakageIndex struct {
	CurrentAnnualRealLossesM3     float64 `json:"current_annual_real_losses"`
	UnavoidableAnnualRealLossesM3 float64 `json:"unavoidable_annual_real_losses"`
}

// Value returns CARL/UARL. An infinite result (UARL zero) is reported
// as such by Rating; callers should treat it as poor.
func (l LeakageIndex) Value() float64 {
	if l.UnavoidableAnnualRealLossesM3 == 0 {
		return 0
	}
	return l.CurrentAnnualRealLossesM3 / l.UnavoidableAnnualRealLossesM3
}

// Rating buckets the ILI against the IWA benchmarks.
func (l LeakageIndex) Rating() string {
	if l.UnavoidableAnnualRealLossesM3 == 0 {
		return "poor"
	}
	switch ili := l.Value(); {
	case ili < iliExcellentBelow:
		return "excellent"
	case ili < iliGoodBelow:
		return "good"
	case ili < iliAverageBelow:
		return "average"
	default:
		return "poor"
	}
}

// UnavoidableLossesLitersPerDay computes UARL using the standard IWA
// formula (18·Lm + 0.8·Nc + 25·Lp)·P, with mains length in km, service
// connection length in m, and pressure in m.
func UnavoidableLossesLitersPerDay(mainsLengthKm float64, serviceConnections int, serviceConnectionLengthM, averagePressureM float64) float64 {
	serviceLengthKm := float64(serviceConnections) * serviceConnectionLengthM / 1000
	return (18*mainsLengthKm + 0.8*float64(serviceConnections) + 25*serviceLengthKm) * averagePressureM
}
