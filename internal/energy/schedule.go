package energy

import "sort"

// HorizonHours is the fixed optimization horizon: one slot per hour of day.
const HorizonHours = 24

// ScheduleRequest asks for a least-cost 24-hour pump schedule subject to
// tank constraints.
type ScheduleRequest struct {
	PumpID string `json:"pump_id"`

	TankCapacityM3 float64 `json:"tank_capacity_m3"`
	TankCurrentM3  float64 `json:"tank_current_level_m3"`
	TankMinM3      float64 `json:"tank_min_level_m3"`

	PumpFlowRateM3h float64 `json:"pump_flow_rate_m3h"`
	PumpPowerKW     float64 `json:"pump_power_kw"`

	DemandForecastM3h []float64 `json:"demand_forecast_m3h"`
	ElectricityRates  []float64 `json:"electricity_rates"`

	// MinRuntimeHours is an optional floor on total on-hours, an
	// operational preference rather than a safety bound.
	MinRuntimeHours int `json:"minimum_runtime_hours"`
}

// HourSlot is one hour of the resulting schedule. TankLevelM3 is the
// projected level at the end of the hour.
type HourSlot struct {
	Hour        int     `json:"hour"`
	PumpOn      bool    `json:"pump_on"`
	TankLevelM3 float64 `json:"tank_level_m3"`
	EnergyCost  float64 `json:"energy_cost"`
	RatePerKWh  float64 `json:"electricity_rate"`
}

// ScheduleResult is the optimized schedule with cost and tank summary.
type ScheduleResult struct {
	PumpID string     `json:"pump_id"`
	Hours  []HourSlot `json:"hourly_schedule"`

	TotalRuntimeHours float64 `json:"total_runtime_hours"`
	TotalEnergyKWh    float64 `json:"total_energy_kwh"`
	TotalCost         float64 `json:"total_cost"`

	// BaselineCost is the cost of the naive policy that runs the pump
	// whenever demand is positive, ignoring rates. Benchmark only.
	BaselineCost   float64 `json:"baseline_cost"`
	SavingsAmount  float64 `json:"savings_amount"`
	SavingsPercent float64 `json:"savings_percentage"`

	MinTankLevelM3 float64 `json:"min_tank_level_m3"`
	MaxTankLevelM3 float64 `json:"max_tank_level_m3"`
}

// Optimize builds a run/no-run schedule over the 24-hour horizon that
// minimizes electricity cost without ever taking the tank outside
// [min, capacity]. Hours are chosen greedily in ascending rate order
// (ties broken by earliest hour), which is cost-separable once the
// feasibility envelope is fixed; under tight tank constraints this is a
// heuristic, not a proven optimum.
//
// Safety dominates cost: an hour is forced off when pumping would
// overflow the tank and forced on when skipping would breach the
// minimum. The infeasible error is returned only when even running the
// pump every remaining hour cannot hold the minimum level.
func Optimize(req ScheduleRequest) (*ScheduleResult, error) {
	if err := validateScheduleRequest(req); err != nil {
		return nil, err
	}

	// Cheapest hours first, earliest hour wins ties. Deterministic.
	order := make([]int, HorizonHours)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := req.ElectricityRates[order[a]], req.ElectricityRates[order[b]]
		if ra != rb {
			return ra < rb
		}
		return order[a] < order[b]
	})

	var on [HorizonHours]bool

	// Feasibility loop: while the projection dips below the floor, turn
	// on the cheapest unused hour at or before the dip that does not
	// overflow the tank.
	for {
		firstLow := firstShortfall(req, on)
		if firstLow < 0 {
			break
		}
		added := false
		for _, h := range order {
			if h > firstLow || on[h] {
				continue
			}
			on[h] = true
			if overflows(req, on) {
				on[h] = false
				continue
			}
			added = true
			break
		}
		if !added {
			return nil, infeasible(req)
		}
	}

	// Optional runtime floor: keep adding cheap hours that fit.
	if req.MinRuntimeHours > 0 {
		runtime := countOn(on)
		for _, h := range order {
			if runtime >= req.MinRuntimeHours {
				break
			}
			if on[h] {
				continue
			}
			on[h] = true
			if overflows(req, on) {
				on[h] = false
				continue
			}
			runtime++
		}
	}

	return buildResult(req, on)
}

func validateScheduleRequest(req ScheduleRequest) error {
	if len(req.DemandForecastM3h) != HorizonHours {
		return invalidRequest("demand forecast must have %d entries, got %d", HorizonHours, len(req.DemandForecastM3h))
	}
	if len(req.ElectricityRates) != HorizonHours {
		return invalidRequest("electricity rates must have %d entries, got %d", HorizonHours, len(req.ElectricityRates))
	}
	if req.TankCapacityM3 <= 0 {
		return invalidRequest("tank capacity must be positive, got %.3f", req.TankCapacityM3)
	}
	if req.TankMinM3 < 0 || req.TankMinM3 >= req.TankCapacityM3 {
		return invalidRequest("tank minimum %.3f must satisfy 0 <= min < capacity %.3f", req.TankMinM3, req.TankCapacityM3)
	}
	if req.TankCurrentM3 < req.TankMinM3 || req.TankCurrentM3 > req.TankCapacityM3 {
		return invalidRequest("tank level %.3f outside [%.3f, %.3f]", req.TankCurrentM3, req.TankMinM3, req.TankCapacityM3)
	}
	if req.PumpFlowRateM3h <= 0 {
		return invalidRequest("pump flow rate must be positive, got %.3f", req.PumpFlowRateM3h)
	}
	if req.PumpPowerKW <= 0 {
		return invalidRequest("pump power must be positive, got %.3f", req.PumpPowerKW)
	}
	for i, d := range req.DemandForecastM3h {
		if d < 0 {
			return invalidRequest("demand forecast hour %d is negative: %.3f", i, d)
		}
	}
	for i, r := range req.ElectricityRates {
		if r < 0 {
			return invalidRequest("electricity rate hour %d is negative: %.3f", i, r)
		}
	}
	if req.MinRuntimeHours < 0 || req.MinRuntimeHours > HorizonHours {
		return invalidRequest("minimum runtime hours %d outside [0, %d]", req.MinRuntimeHours, HorizonHours)
	}
	return nil
}

// firstShortfall projects the tank level under the given on-set and
// returns the first hour whose end level falls below the minimum, or -1.
func firstShortfall(req ScheduleRequest, on [HorizonHours]bool) int {
	level := req.TankCurrentM3
	for t := 0; t < HorizonHours; t++ {
		if on[t] {
			level += req.PumpFlowRateM3h
		}
		level -= req.DemandForecastM3h[t]
		if level < req.TankMinM3 {
			return t
		}
	}
	return -1
}

// overflows reports whether any projected end-of-hour level under the
// given on-set exceeds tank capacity.
func overflows(req ScheduleRequest, on [HorizonHours]bool) bool {
	level := req.TankCurrentM3
	for t := 0; t < HorizonHours; t++ {
		if on[t] {
			level += req.PumpFlowRateM3h
		}
		level -= req.DemandForecastM3h[t]
		if level > req.TankCapacityM3 {
			return true
		}
	}
	return false
}

func countOn(on [HorizonHours]bool) int {
	n := 0
	for _, b := range on {
		if b {
			n++
		}
	}
	return n
}

// infeasible simulates the all-on policy (with the capacity force-off
// override) up to the hour where the floor breaks and returns the
// partial trajectory for diagnostics.
func infeasible(req ScheduleRequest) *Error {
	var partial []HourSlot
	level := req.TankCurrentM3
	for t := 0; t < HorizonHours; t++ {
		pumpOn := level+req.PumpFlowRateM3h-req.DemandForecastM3h[t] <= req.TankCapacityM3
		cost := 0.0
		if pumpOn {
			level += req.PumpFlowRateM3h
			cost = req.PumpPowerKW * req.ElectricityRates[t]
		}
		level -= req.DemandForecastM3h[t]
		partial = append(partial, HourSlot{
			Hour:        t,
			PumpOn:      pumpOn,
			TankLevelM3: level,
			EnergyCost:  cost,
			RatePerKWh:  req.ElectricityRates[t],
		})
		if level < req.TankMinM3 {
			break
		}
	}
	return &Error{
		Kind:              KindInfeasibleSchedule,
		Message:           "pump capacity cannot hold tank above minimum for the demand forecast",
		PartialTrajectory: partial,
	}
}

// buildResult performs the final walk with both safety overrides live
// and derives the totals from what actually happens hour by hour.
func buildResult(req ScheduleRequest, on [HorizonHours]bool) (*ScheduleResult, error) {
	hours := make([]HourSlot, 0, HorizonHours)
	level := req.TankCurrentM3
	minLevel, maxLevel := level, level
	runtime := 0
	totalCost := 0.0

	for t := 0; t < HorizonHours; t++ {
		pumpOn := on[t]
		if pumpOn && level+req.PumpFlowRateM3h-req.DemandForecastM3h[t] > req.TankCapacityM3 {
			pumpOn = false
		}
		if !pumpOn && level-req.DemandForecastM3h[t] < req.TankMinM3 &&
			level+req.PumpFlowRateM3h-req.DemandForecastM3h[t] <= req.TankCapacityM3 {
			pumpOn = true
		}

		cost := 0.0
		if pumpOn {
			level += req.PumpFlowRateM3h
			cost = req.PumpPowerKW * req.ElectricityRates[t]
			runtime++
			totalCost += cost
		}
		level -= req.DemandForecastM3h[t]
		if level < req.TankMinM3 {
			return nil, infeasible(req)
		}
		if level < minLevel {
			minLevel = level
		}
		if level > maxLevel {
			maxLevel = level
		}
		hours = append(hours, HourSlot{
			Hour:        t,
			PumpOn:      pumpOn,
			TankLevelM3: level,
			EnergyCost:  cost,
			RatePerKWh:  req.ElectricityRates[t],
		})
	}

	baseline := 0.0
	for t := 0; t < HorizonHours; t++ {
		if req.DemandForecastM3h[t] > 0 {
			baseline += req.PumpPowerKW * req.ElectricityRates[t]
		}
	}
	savings := baseline - totalCost
	savingsPct := 0.0
	if baseline > 0 {
		savingsPct = savings / baseline * 100
	}

	return &ScheduleResult{
		PumpID:            req.PumpID,
		Hours:             hours,
		TotalRuntimeHours: float64(runtime),
		TotalEnergyKWh:    float64(runtime) * req.PumpPowerKW,
		TotalCost:         totalCost,
		BaselineCost:      baseline,
		SavingsAmount:     savings,
		SavingsPercent:    savingsPct,
		MinTankLevelM3:    minLevel,
		MaxTankLevelM3:    maxLevel,
	}, nil
}
