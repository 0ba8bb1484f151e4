// internal/app/store/relational/emissions.go
package relstore

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
)

// DailyEmission is one recorded day for one piece of equipment.
type DailyEmission struct {
	OrganizationID string
	EquipmentID    string
	Date           string // YYYY-MM-DD
	EmissionsValue float64
	EmissionsUnit  string
}

// HasDailyEmissions reports whether any row exists for the organization on date.
func (db *DB) HasDailyEmissions(ctx context.Context, orgID, date string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, db.Q(`SELECT COUNT(*) FROM daily_emissions
		WHERE organization_id = ? AND date = ?`), orgID, date).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertDailyEmissions writes rows in one transaction; either all are
// stored or none.
func (db *DB) InsertDailyEmissions(ctx context.Context, rows []DailyEmission) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, db.Q(`INSERT INTO daily_emissions
		(organization_id, equipment_id, date, emissions_value, emissions_unit) VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.OrganizationID, r.EquipmentID, r.Date, r.EmissionsValue, r.EmissionsUnit); err != nil {
			return fmt.Errorf("insert daily emission %s/%s: %w", r.EquipmentID, r.Date, err)
		}
	}
	return tx.Commit()
}

// DailyRow is one day of the organization's recorded emissions.
type DailyRow struct {
	Date           string  `json:"date"`
	TotalEmissions float64 `json:"total_emissions"`
	EquipmentCount int     `json:"equipment_count"`
}

// WeeklyRow is one ISO week of recorded emissions.
type WeeklyRow struct {
	WeekNumber     int     `json:"week_number"`
	Year           int     `json:"year"`
	WeekName       string  `json:"week_name"`
	TotalEmissions float64 `json:"total_emissions"`
	EquipmentCount int     `json:"equipment_count"`
}

// MonthlyRow is one calendar month of recorded emissions.
type MonthlyRow struct {
	MonthNumber    int     `json:"month_number"`
	Year           int     `json:"year"`
	MonthName      string  `json:"month_name"`
	TotalEmissions float64 `json:"total_emissions"`
}

// DailyAggregates returns per-day totals for the trailing days calendar
// days, today included, oldest first.
func (db *DB) DailyAggregates(ctx context.Context, orgID string, days int, now time.Time) ([]DailyRow, error) {
	if days <= 0 {
		return []DailyRow{}, nil
	}
	return db.dailySince(ctx, orgID, timeseries.DaysAgoAtMidnight(now, days-1))
}

func (db *DB) dailySince(ctx context.Context, orgID string, from time.Time) ([]DailyRow, error) {
	rows, err := db.QueryContext(ctx, db.Q(`SELECT date, SUM(emissions_value), COUNT(DISTINCT equipment_id)
		FROM daily_emissions
		WHERE organization_id = ? AND date >= ?
		GROUP BY date ORDER BY date`), orgID, timeseries.FormatDate(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailyRow{}
	for rows.Next() {
		var r DailyRow
		if err := rows.Scan(&r.Date, &r.TotalEmissions, &r.EquipmentCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func dayTotals(rows []DailyRow, loc *time.Location) []timeseries.DayTotal {
	out := make([]timeseries.DayTotal, 0, len(rows))
	for _, r := range rows {
		day, err := time.ParseInLocation(timeseries.DateLayout, r.Date, loc)
		if err != nil {
			continue
		}
		out = append(out, timeseries.DayTotal{Day: day, Emissions: r.TotalEmissions, EquipmentCount: r.EquipmentCount})
	}
	return out
}

// WeeklyAggregates groups the trailing weeks*7 days by ISO week.
func (db *DB) WeeklyAggregates(ctx context.Context, orgID string, weeks int, now time.Time) ([]WeeklyRow, error) {
	if weeks <= 0 {
		return []WeeklyRow{}, nil
	}
	daily, err := db.dailySince(ctx, orgID, timeseries.DaysAgoAtMidnight(now, weeks*7-1))
	if err != nil {
		return nil, err
	}
	out := []WeeklyRow{}
	for _, b := range timeseries.GroupWeeks(dayTotals(daily, now.Location()), weeks, now) {
		out = append(out, WeeklyRow{
			WeekNumber:     b.Week,
			Year:           b.Year,
			WeekName:       timeseries.WeekLabel(b.Week),
			TotalEmissions: math.Round(b.Total),
			EquipmentCount: b.EquipmentCount,
		})
	}
	return out, nil
}

// MonthlyAggregates groups days from the first of the month `months` back
// by calendar month.
func (db *DB) MonthlyAggregates(ctx context.Context, orgID string, months int, now time.Time) ([]MonthlyRow, error) {
	if months <= 0 {
		return []MonthlyRow{}, nil
	}
	from := time.Date(now.Year(), now.Month()-time.Month(months), 1, 0, 0, 0, 0, now.Location())
	daily, err := db.dailySince(ctx, orgID, from)
	if err != nil {
		return nil, err
	}
	out := []MonthlyRow{}
	for _, b := range timeseries.GroupMonths(dayTotals(daily, now.Location()), months, now) {
		out = append(out, MonthlyRow{
			MonthNumber:    int(b.Month),
			Year:           b.Year,
			MonthName:      timeseries.MonthName(int(b.Month) - 1),
			TotalEmissions: math.Round(b.Total),
		})
	}
	return out, nil
}
