package http

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/waterlytics/waterops/internal/domain"
	"github.com/waterlytics/waterops/internal/energy"
	"github.com/waterlytics/waterops/internal/nrw"
	"github.com/waterlytics/waterops/internal/service"
)

func Register(app *fiber.App, svcs *service.Services) {
	e := app.Group("/energy")
	e.Post("schedule-optimization", func(c *fiber.Ctx) error { return optimizeSchedule(c, svcs) })
	e.Post("efficiency-analysis", func(c *fiber.Ctx) error { return analyzeEfficiency(c, svcs) })

	app.Get("/pumps", func(c *fiber.Ctx) error {
		items, err := svcs.Repos.ListPumps()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})

	n := app.Group("/nrw")
	n.Post("water-balance", func(c *fiber.Ctx) error { return waterBalance(c) })
	n.Post("water-balance/from-readings", func(c *fiber.Ctx) error { return waterBalanceFromReadings(c, svcs) })
	n.Post("mnf-analysis", func(c *fiber.Ctx) error { return mnfAnalysis(c) })

	o := app.Group("/compliance/obligations")
	o.Get("/", func(c *fiber.Ctx) error { return listObligations(c, svcs) })
	o.Get("/upcoming", func(c *fiber.Ctx) error { return upcomingObligations(c, svcs) })
	o.Post("/", func(c *fiber.Ctx) error { return createObligation(c, svcs) })
	o.Patch("/:id/status", func(c *fiber.Ctx) error { return updateObligationStatus(c, svcs) })
}

// round2 is applied to currency and volume fields in the external
// representation only; the engine computes unrounded.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// engineError translates a tagged engine failure into an HTTP status.
func engineError(c *fiber.Ctx, err error) error {
	var e *energy.Error
	if errors.As(err, &e) {
		status := fiber.StatusBadRequest
		if e.Kind == energy.KindUndefinedEfficiency {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{"kind": e.Kind, "message": e.Message})
	}
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

type hourSlotResponse struct {
	Hour            int     `json:"hour"`
	PumpOn          bool    `json:"pump_on"`
	TankLevelM3     float64 `json:"tank_level_m3"`
	EnergyCost      float64 `json:"energy_cost"`
	ElectricityRate float64 `json:"electricity_rate"`
}

func hourSlots(slots []energy.HourSlot) []hourSlotResponse {
	out := make([]hourSlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, hourSlotResponse{
			Hour:            s.Hour,
			PumpOn:          s.PumpOn,
			TankLevelM3:     round2(s.TankLevelM3),
			EnergyCost:      round2(s.EnergyCost),
			ElectricityRate: s.RatePerKWh,
		})
	}
	return out
}

type scheduleResponse struct {
	PumpID            string             `json:"pump_id"`
	Feasible          bool               `json:"feasible"`
	Warning           string             `json:"warning,omitempty"`
	GeneratedAt       time.Time          `json:"generated_at"`
	HourlySchedule    []hourSlotResponse `json:"hourly_schedule"`
	TotalRuntimeHours float64            `json:"total_runtime_hours"`
	TotalEnergyKWh    float64            `json:"total_energy_kwh"`
	TotalCost         float64            `json:"total_cost"`
	BaselineCost      float64            `json:"baseline_cost"`
	SavingsAmount     float64            `json:"savings_amount"`
	SavingsPercentage float64            `json:"savings_percentage"`
	MinTankLevelM3    float64            `json:"min_tank_level_m3"`
	MaxTankLevelM3    float64            `json:"max_tank_level_m3"`
}

func optimizeSchedule(c *fiber.Ctx, svcs *service.Services) error {
	var req energy.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": energy.KindInvalidRequest, "message": err.Error()})
	}

	res, err := svcs.Energy.OptimizeSchedule(req)
	if err != nil {
		var e *energy.Error
		if errors.As(err, &e) && e.Kind == energy.KindInfeasibleSchedule {
			// Operators need to see how close the system is to
			// feasibility, so this is a flagged success, not an error.
			return c.JSON(scheduleResponse{
				PumpID:         req.PumpID,
				Feasible:       false,
				Warning:        e.Message,
				GeneratedAt:    time.Now().UTC(),
				HourlySchedule: hourSlots(e.PartialTrajectory),
			})
		}
		return engineError(c, err)
	}

	return c.JSON(scheduleResponse{
		PumpID:            res.PumpID,
		Feasible:          true,
		GeneratedAt:       time.Now().UTC(),
		HourlySchedule:    hourSlots(res.Hours),
		TotalRuntimeHours: res.TotalRuntimeHours,
		TotalEnergyKWh:    round2(res.TotalEnergyKWh),
		TotalCost:         round2(res.TotalCost),
		BaselineCost:      round2(res.BaselineCost),
		SavingsAmount:     round2(res.SavingsAmount),
		SavingsPercentage: round1(res.SavingsPercent),
		MinTankLevelM3:    round2(res.MinTankLevelM3),
		MaxTankLevelM3:    round2(res.MaxTankLevelM3),
	})
}

type efficiencyRequest struct {
	PumpID             string  `json:"pump_id"`
	FlowRateM3h        float64 `json:"flow_rate_m3h"`
	DischargePressureM float64 `json:"discharge_pressure_m"`
	SuctionPressureM   float64 `json:"suction_pressure_m"`
	PowerKW            float64 `json:"power_consumption_kw"`
	FrictionLossM      float64 `json:"friction_loss_m"`
	RatedEfficiency    float64 `json:"rated_efficiency"`
}

type efficiencyResponse struct {
	PumpID                string    `json:"pump_id"`
	AnalysisTimestamp     time.Time `json:"analysis_timestamp"`
	FlowRateM3h           float64   `json:"flow_rate_m3h"`
	TotalHeadM            float64   `json:"total_head_m"`
	PowerKW               float64   `json:"power_consumption_kw"`
	HydraulicPowerKW      float64   `json:"hydraulic_power_kw"`
	WireToWaterEfficiency float64   `json:"wire_to_water_efficiency"`
	RatedEfficiency       float64   `json:"rated_efficiency"`
	EfficiencyRatio       float64   `json:"efficiency_ratio"`
	SpecificEnergyKWhM3   float64   `json:"specific_energy_kwh_m3"`
	EfficiencyRating      string    `json:"efficiency_rating"`
	DegradationPercentage float64   `json:"degradation_percentage"`
	MaintenanceNeeded     bool      `json:"maintenance_recommended"`
	Recommendations       []string  `json:"recommendations"`
}

func analyzeEfficiency(c *fiber.Ctx, svcs *service.Services) error {
	var req efficiencyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": energy.KindInvalidMeasurement, "message": err.Error()})
	}

	res, err := svcs.Energy.AnalyzeEfficiency(c.Context(), energy.OperatingSnapshot{
		PumpID:             req.PumpID,
		FlowRateM3h:        req.FlowRateM3h,
		DischargePressureM: req.DischargePressureM,
		SuctionPressureM:   req.SuctionPressureM,
		PowerKW:            req.PowerKW,
		FrictionLossM:      req.FrictionLossM,
		Timestamp:          time.Now().UTC(),
	}, req.RatedEfficiency)
	if err != nil {
		return engineError(c, err)
	}

	return c.JSON(efficiencyResponse{
		PumpID:                res.PumpID,
		AnalysisTimestamp:     time.Now().UTC(),
		FlowRateM3h:           res.FlowRateM3h,
		TotalHeadM:            round2(res.TotalHeadM),
		PowerKW:               res.PowerKW,
		HydraulicPowerKW:      round2(res.HydraulicPowerKW),
		WireToWaterEfficiency: round3(res.WireToWaterEfficiency),
		RatedEfficiency:       res.RatedEfficiency,
		EfficiencyRatio:       round3(res.EfficiencyRatio),
		SpecificEnergyKWhM3:   round3(res.SpecificEnergyKWhM3),
		EfficiencyRating:      res.Rating,
		DegradationPercentage: round1(res.DegradationPct),
		MaintenanceNeeded:     res.MaintenanceNeeded,
		Recommendations:       res.Recommendations,
	})
}

func waterBalance(c *fiber.Ctx) error {
	var in nrw.BalanceInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	bal, err := nrw.CalculateBalance(in)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(bal)
}

type balanceFromReadingsRequest struct {
	SystemInputVolumeM3       float64   `json:"system_input_volume"`
	UnauthorizedConsumptionM3 float64   `json:"unauthorized_consumption"`
	MeterInaccuraciesM3       float64   `json:"meter_inaccuracies"`
	PeriodStart               time.Time `json:"period_start"`
	PeriodEnd                 time.Time `json:"period_end"`
}

func waterBalanceFromReadings(c *fiber.Ctx, svcs *service.Services) error {
	var req balanceFromReadingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	bal, err := svcs.NRW.BalanceFromReadings(req.SystemInputVolumeM3, req.UnauthorizedConsumptionM3, req.MeterInaccuraciesM3, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(bal)
}

type mnfRequest struct {
	HourlyFlowsM3h        []float64 `json:"hourly_flows_m3h"`
	ServiceConnections    int       `json:"service_connections"`
	AveragePressureM      float64   `json:"average_pressure_m"`
	LegitimateNightUseLPH float64   `json:"legitimate_night_use_lph"`
}

func mnfAnalysis(c *fiber.Ctx) error {
	var req mnfRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	res, err := nrw.AnalyzeMinimumNightFlow(req.HourlyFlowsM3h, req.ServiceConnections, req.AveragePressureM, req.LegitimateNightUseLPH)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

func listObligations(c *fiber.Ctx, svcs *service.Services) error {
	items, err := svcs.Repos.ListObligations()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(items)
}

func upcomingObligations(c *fiber.Ctx, svcs *service.Services) error {
	days := c.QueryInt("days", 30)
	items, err := svcs.Repos.ObligationsDueWithin(days, time.Now().UTC())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(items)
}

func createObligation(c *fiber.Ctx, svcs *service.Services) error {
	var o domain.Obligation
	if err := c.BodyParser(&o); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if o.Title == "" || o.Regulation == "" || o.DueDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title, regulation, and due_date are required"})
	}
	if o.Status == "" {
		o.Status = domain.ObligationPending
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	if err := svcs.Repos.InsertObligation(&o); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func updateObligationStatus(c *fiber.Ctx, svcs *service.Services) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid obligation id"})
	}
	var req struct {
		Status         string     `json:"status"`
		CompletionDate *time.Time `json:"completion_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	switch req.Status {
	case domain.ObligationPending, domain.ObligationInProgress, domain.ObligationCompleted, domain.ObligationOverdue, domain.ObligationWaived:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status: " + req.Status})
	}
	if req.Status == domain.ObligationCompleted && req.CompletionDate == nil {
		now := time.Now().UTC()
		req.CompletionDate = &now
	}
	if err := svcs.Repos.UpdateObligationStatus(int64(id), req.Status, req.CompletionDate, time.Now().UTC()); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
