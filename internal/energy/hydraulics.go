package energy

// Hydraulic conversions used by the analyzer and, for unit conversions,
// the schedule optimizer. Everything here is stateless: physical
// constants are passed in explicitly instead of living in package vars.

// Constants holds the physical constants the hydraulic formulas depend on.
type Constants struct {
	WaterDensityKgM3 float64 // kg/m³
	GravityMS2       float64 // m/s²
}

// DefaultConstants returns fresh water at standard gravity.
func DefaultConstants() Constants {
	return Constants{WaterDensityKgM3: 1000, GravityMS2: 9.81}
}

// TotalDynamicHead returns the net head the pump must overcome, in
// meters. Friction losses default to zero when the caller has no
// estimate.
func TotalDynamicHead(dischargeHeadM, suctionHeadM, frictionLossM float64) (float64, error) {
	if dischargeHeadM < 0 || suctionHeadM < 0 || frictionLossM < 0 {
		return 0, invalidMeasurement("head components must be non-negative (discharge=%.3f suction=%.3f friction=%.3f)",
			dischargeHeadM, suctionHeadM, frictionLossM)
	}
	return dischargeHeadM - suctionHeadM + frictionLossM, nil
}

// HydraulicPowerKW returns the water power P = ρ·g·Q·H for a flow rate
// in m³/h and head in meters. With the default constants this is the
// familiar Q·H/367 rule of thumb.
func (c Constants) HydraulicPowerKW(flowRateM3h, totalHeadM float64) (float64, error) {
	if flowRateM3h < 0 || totalHeadM < 0 {
		return 0, invalidMeasurement("flow and head must be non-negative (flow=%.3f head=%.3f)", flowRateM3h, totalHeadM)
	}
	flowM3s := flowRateM3h / 3600
	return c.WaterDensityKgM3 * c.GravityMS2 * flowM3s * totalHeadM / 1000, nil
}

// WireToWaterEfficiency is hydraulic power out over electrical power in.
func WireToWaterEfficiency(hydraulicPowerKW, electricalPowerKW float64) (float64, error) {
	if hydraulicPowerKW < 0 || electricalPowerKW < 0 {
		return 0, invalidMeasurement("power must be non-negative (hydraulic=%.3f electrical=%.3f)",
			hydraulicPowerKW, electricalPowerKW)
	}
	if electricalPowerKW == 0 {
		return 0, undefinedEfficiency("electrical power is zero")
	}
	return hydraulicPowerKW / electricalPowerKW, nil
}

// SpecificEnergyKWhM3 is the energy spent per cubic meter moved.
func SpecificEnergyKWhM3(electricalPowerKW, flowRateM3h float64) (float64, error) {
	if electricalPowerKW < 0 || flowRateM3h < 0 {
		return 0, invalidMeasurement("power and flow must be non-negative (power=%.3f flow=%.3f)",
			electricalPowerKW, flowRateM3h)
	}
	if flowRateM3h == 0 {
		return 0, undefinedEfficiency("flow rate is zero")
	}
	return electricalPowerKW / flowRateM3h, nil
}
