package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waterlytics/waterops/internal/domain"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *Repos) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return mock, New(sqlx.NewDb(db, "pgx"))
}

func TestListPumps(t *testing.T) {
	mock, repo := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "pump_id", "name", "rated_flow_m3h", "rated_power_kw", "rated_efficiency"}).
		AddRow(1, "PUMP-001", "Main Well Pump", 45.0, 22.0, 0.75).
		AddRow(2, "PUMP-002", "Booster Station A", 30.0, 15.0, 0.72)

	mock.ExpectQuery(`SELECT id, pump_id, name`).WillReturnRows(rows)

	pumps, err := repo.ListPumps()
	require.NoError(t, err)
	require.Len(t, pumps, 2)
	assert.Equal(t, "PUMP-001", pumps[0].PumpID)
	assert.Equal(t, 0.75, pumps[0].RatedEfficiency)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPump(t *testing.T) {
	mock, repo := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "pump_id", "name", "rated_flow_m3h", "rated_power_kw", "rated_efficiency"}).
		AddRow(1, "PUMP-001", "Main Well Pump", 45.0, 22.0, 0.75)

	mock.ExpectQuery(`SELECT id, pump_id, name`).
		WithArgs("PUMP-001").
		WillReturnRows(rows)

	pump, err := repo.GetPump("PUMP-001")
	require.NoError(t, err)
	assert.Equal(t, "Main Well Pump", pump.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSnapshot(t *testing.T) {
	mock, repo := setupMockDB(t)

	ts := time.Date(2026, time.August, 30, 14, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO pump_snapshots`).
		WithArgs("PUMP-001", ts, 45.0, 55.0, 5.0, 20.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.InsertSnapshot(&domain.PumpSnapshot{
		PumpID:             "PUMP-001",
		Timestamp:          ts,
		FlowRateM3h:        45,
		DischargePressureM: 55,
		SuctionPressureM:   5,
		PowerKW:            20,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadingTotals(t *testing.T) {
	mock, repo := setupMockDB(t)

	start := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"billed", "unbilled"}).AddRow(7500.0, 300.0)
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(start, end).
		WillReturnRows(rows)

	billed, unbilled, err := repo.ReadingTotals(start, end)
	require.NoError(t, err)
	assert.Equal(t, 7500.0, billed)
	assert.Equal(t, 300.0, unbilled)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertObligation(t *testing.T) {
	mock, repo := setupMockDB(t)

	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO obligations`).
		WithArgs("Monthly coliform sampling", "", "EPA SDWA 40 CFR 141.21", "monitoring", "Monthly", due, domain.ObligationPending, "", "", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	o := &domain.Obligation{
		Title:      "Monthly coliform sampling",
		Regulation: "EPA SDWA 40 CFR 141.21",
		Category:   "monitoring",
		Frequency:  "Monthly",
		DueDate:    due,
		Status:     domain.ObligationPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.InsertObligation(o))
	assert.Equal(t, int64(7), o.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObligationsDueWithin(t *testing.T) {
	mock, repo := setupMockDB(t)

	now := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "title", "description", "regulation", "category", "frequency", "due_date", "status", "completion_date", "notes", "responsible_party", "created_at", "updated_at"}
	rows := sqlmock.NewRows(cols).
		AddRow(1, "Quarterly DBP sampling", "", "EPA SDWA 40 CFR 141.132", "monitoring", "Quarterly",
			now.AddDate(0, 0, 10), domain.ObligationPending, nil, "", "operator", now, now)

	mock.ExpectQuery(`SELECT id, title`).
		WithArgs(now.AddDate(0, 0, 30)).
		WillReturnRows(rows)

	items, err := repo.ObligationsDueWithin(30, now)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Quarterly DBP sampling", items[0].Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}
