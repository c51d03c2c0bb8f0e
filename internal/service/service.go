package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/waterlytics/waterops/internal/cloud"
	"github.com/waterlytics/waterops/internal/config"
	"github.com/waterlytics/waterops/internal/domain"
	"github.com/waterlytics/waterops/internal/energy"
	"github.com/waterlytics/waterops/internal/nrw"
	"github.com/waterlytics/waterops/internal/repository"
)

type Services struct {
	Repos     *repository.Repos
	Energy    *EnergyService
	Telemetry *TelemetryService
	NRW       *NRWService
}

func New(db *sqlx.DB) *Services {
	repos := repository.New(db)

	var alerts *cloud.SNSClient
	if config.UseCloudServices() {
		client, err := cloud.NewSNSClient(context.Background(), config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Error().Err(err).Msg("sns client init failed; alerts disabled")
		} else {
			alerts = client
		}
	}

	return &Services{
		Repos: repos,
		Energy: &EnergyService{
			repos:    repos,
			analyzer: energy.NewAnalyzer(energy.DefaultConstants(), config.RatingThresholds()),
			alerts:   alerts,
		},
		Telemetry: &TelemetryService{repos: repos},
		NRW:       &NRWService{repos: repos},
	}
}

// EnergyService fronts the optimization engine and resolves pump
// reference data for it.
type EnergyService struct {
	repos    *repository.Repos
	analyzer *energy.Analyzer
	alerts   *cloud.SNSClient
}

// AnalyzeEfficiency diagnoses a snapshot. A zero rated efficiency is
// resolved from the stored pump record, falling back to the configured
// default when the pump is unknown.
func (s *EnergyService) AnalyzeEfficiency(ctx context.Context, snap energy.OperatingSnapshot, ratedEfficiency float64) (*energy.EfficiencyResult, error) {
	if ratedEfficiency == 0 {
		ratedEfficiency = config.DefaultRatedEfficiency()
		if s.repos != nil {
			if pump, err := s.repos.GetPump(snap.PumpID); err == nil && pump.RatedEfficiency > 0 {
				ratedEfficiency = pump.RatedEfficiency
			}
		}
	}

	res, err := s.analyzer.Analyze(snap, ratedEfficiency)
	if err != nil {
		return nil, err
	}
	if res.MaintenanceNeeded && s.alerts != nil {
		if err := s.alerts.SendMaintenanceAlert(ctx, res.PumpID, res.Rating, res.EfficiencyRatio, res.DegradationPct); err != nil {
			log.Error().Err(err).Str("pump_id", res.PumpID).Msg("maintenance alert failed")
		}
	}
	return res, nil
}

// OptimizeSchedule runs the TOU schedule optimizer.
func (s *EnergyService) OptimizeSchedule(req energy.ScheduleRequest) (*energy.ScheduleResult, error) {
	res, err := energy.Optimize(req)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("pump_id", req.PumpID).
		Float64("runtime_hours", res.TotalRuntimeHours).
		Float64("total_cost", res.TotalCost).
		Float64("savings", res.SavingsAmount).
		Msg("schedule optimized")
	return res, nil
}

// TelemetryService persists pump operating snapshots arriving over MQTT.
type TelemetryService struct {
	repos *repository.Repos
}

func (s *TelemetryService) FromMQTT(topic string, payload []byte) error {
	var m struct {
		PumpID             string    `json:"pump_id"`
		Timestamp          time.Time `json:"timestamp"`
		FlowRateM3h        float64   `json:"flow_rate_m3h"`
		DischargePressureM float64   `json:"discharge_pressure_m"`
		SuctionPressureM   float64   `json:"suction_pressure_m"`
		PowerKW            float64   `json:"power_kw"`
	}
	if err := json.Unmarshal(payload, &m); err != nil {
		return err
	}
	return s.repos.InsertSnapshot(&domain.PumpSnapshot{
		PumpID:             m.PumpID,
		Timestamp:          m.Timestamp,
		FlowRateM3h:        m.FlowRateM3h,
		DischargePressureM: m.DischargePressureM,
		SuctionPressureM:   m.SuctionPressureM,
		PowerKW:            m.PowerKW,
	})
}

// NRWService assembles water-balance inputs from stored reading totals.
type NRWService struct {
	repos *repository.Repos
}

// BalanceFromReadings computes the IWA balance for a period, pulling
// billed/unbilled consumption totals from the meter readings.
func (s *NRWService) BalanceFromReadings(systemInputM3, unauthorizedM3, meterInaccuraciesM3 float64, start, end time.Time) (*nrw.Balance, error) {
	billed, unbilled, err := s.repos.ReadingTotals(start, end)
	if err != nil {
		return nil, err
	}
	return nrw.CalculateBalance(nrw.BalanceInput{
		SystemInputVolumeM3:       systemInputM3,
		BilledMeteredM3:           billed,
		UnbilledMeteredM3:         unbilled,
		UnauthorizedConsumptionM3: unauthorizedM3,
		MeterInaccuraciesM3:       meterInaccuraciesM3,
		PeriodStart:               start,
		PeriodEnd:                 end,
	})
}
