package domain

import "time"

// Pump is the immutable asset record; rated figures come from the
// manufacturer curve.
type Pump struct {
	ID              int64   `db:"id" json:"id"`
	PumpID          string  `db:"pump_id" json:"pump_id"`
	Name            string  `db:"name" json:"name"`
	RatedFlowM3h    float64 `db:"rated_flow_m3h" json:"rated_flow_m3h"`
	RatedPowerKW    float64 `db:"rated_power_kw" json:"rated_power_kw"`
	RatedEfficiency float64 `db:"rated_efficiency" json:"rated_efficiency"`
}

// PumpSnapshot is one ingested telemetry point for a pump.
type PumpSnapshot struct {
	ID                 int64     `db:"id" json:"id"`
	PumpID             string    `db:"pump_id" json:"pump_id"`
	Timestamp          time.Time `db:"timestamp" json:"timestamp"`
	FlowRateM3h        float64   `db:"flow_rate_m3h" json:"flow_rate_m3h"`
	DischargePressureM float64   `db:"discharge_pressure_m" json:"discharge_pressure_m"`
	SuctionPressureM   float64   `db:"suction_pressure_m" json:"suction_pressure_m"`
	PowerKW            float64   `db:"power_kw" json:"power_kw"`
}

// MeterReading is a cleaned volumetric reading from the ingestion layer.
type MeterReading struct {
	ID        int64     `db:"id" json:"id"`
	MeterID   int64     `db:"meter_id" json:"meter_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	VolumeM3  float64   `db:"volume_m3" json:"volume_m3"`
	Billed    bool      `db:"billed" json:"billed"`
}

// Obligation statuses.
const (
	ObligationPending    = "pending"
	ObligationInProgress = "in_progress"
	ObligationCompleted  = "completed"
	ObligationOverdue    = "overdue"
	ObligationWaived     = "waived"
)

// Obligation is a tracked regulatory requirement (monitoring, reporting,
// treatment, ...) with a due date.
type Obligation struct {
	ID               int64      `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Regulation       string     `db:"regulation" json:"regulation"`
	Category         string     `db:"category" json:"category"`
	Frequency        string     `db:"frequency" json:"frequency"`
	DueDate          time.Time  `db:"due_date" json:"due_date"`
	Status           string     `db:"status" json:"status"`
	CompletionDate   *time.Time `db:"completion_date" json:"completion_date,omitempty"`
	Notes            string     `db:"notes" json:"notes"`
	ResponsibleParty string     `db:"responsible_party" json:"responsible_party"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// IsOverdue reports whether the obligation is past due and still open.
func (o Obligation) IsOverdue(now time.Time) bool {
	if o.Status == ObligationCompleted || o.Status == ObligationWaived {
		return false
	}
	return o.DueDate.Before(now)
}
