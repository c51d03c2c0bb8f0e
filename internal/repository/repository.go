package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/waterlytics/waterops/internal/domain"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func (r *Repos) ListPumps() ([]domain.Pump, error) {
	var out []domain.Pump
	err := r.db.Select(&out, `SELECT id, pump_id, name, rated_flow_m3h, rated_power_kw, rated_efficiency FROM pumps ORDER BY id`)
	return out, err
}

func (r *Repos) GetPump(pumpID string) (*domain.Pump, error) {
	var p domain.Pump
	err := r.db.Get(&p, `SELECT id, pump_id, name, rated_flow_m3h, rated_power_kw, rated_efficiency FROM pumps WHERE pump_id = $1`, pumpID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repos) InsertSnapshot(s *domain.PumpSnapshot) error {
	_, err := r.db.Exec(`INSERT INTO pump_snapshots(pump_id, timestamp, flow_rate_m3h, discharge_pressure_m, suction_pressure_m, power_kw) VALUES ($1,$2,$3,$4,$5,$6)`,
		s.PumpID, s.Timestamp, s.FlowRateM3h, s.DischargePressureM, s.SuctionPressureM, s.PowerKW)
	return err
}

func (r *Repos) RecentSnapshots(pumpID string, limit int) ([]domain.PumpSnapshot, error) {
	var out []domain.PumpSnapshot
	err := r.db.Select(&out, `SELECT id, pump_id, timestamp, flow_rate_m3h, discharge_pressure_m, suction_pressure_m, power_kw FROM pump_snapshots WHERE pump_id = $1 ORDER BY timestamp DESC LIMIT $2`,
		pumpID, limit)
	return out, err
}

// ReadingTotals sums metered volumes over a period, split by billing
// status, for the water-balance input.
func (r *Repos) ReadingTotals(start, end time.Time) (billed, unbilled float64, err error) {
	row := r.db.QueryRow(`SELECT COALESCE(SUM(volume_m3) FILTER (WHERE billed), 0), COALESCE(SUM(volume_m3) FILTER (WHERE NOT billed), 0) FROM meter_readings WHERE timestamp >= $1 AND timestamp < $2`,
		start, end)
	err = row.Scan(&billed, &unbilled)
	return billed, unbilled, err
}

func (r *Repos) ListObligations() ([]domain.Obligation, error) {
	var out []domain.Obligation
	err := r.db.Select(&out, `SELECT id, title, description, regulation, category, frequency, due_date, status, completion_date, notes, responsible_party, created_at, updated_at FROM obligations ORDER BY due_date`)
	return out, err
}

func (r *Repos) ObligationsDueWithin(days int, now time.Time) ([]domain.Obligation, error) {
	var out []domain.Obligation
	err := r.db.Select(&out, `SELECT id, title, description, regulation, category, frequency, due_date, status, completion_date, notes, responsible_party, created_at, updated_at FROM obligations WHERE status NOT IN ('completed','waived') AND due_date <= $1 ORDER BY due_date`,
		now.AddDate(0, 0, days))
	return out, err
}

func (r *Repos) InsertObligation(o *domain.Obligation) error {
	return r.db.QueryRow(`INSERT INTO obligations(title, description, regulation, category, frequency, due_date, status, notes, responsible_party, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10) RETURNING id`,
		o.Title, o.Description, o.Regulation, o.Category, o.Frequency, o.DueDate, o.Status, o.Notes, o.ResponsibleParty, o.CreatedAt).Scan(&o.ID)
}

func (r *Repos) UpdateObligationStatus(id int64, status string, completionDate *time.Time, now time.Time) error {
	_, err := r.db.Exec(`UPDATE obligations SET status = $2, completion_date = $3, updated_at = $4 WHERE id = $1`,
		id, status, completionDate, now)
	return err
}
