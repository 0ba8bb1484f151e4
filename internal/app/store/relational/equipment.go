// internal/app/store/relational/equipment.go
package relstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/google/uuid"
)

const equipmentColumns = `id, name, equipment_id, manufacturer, type, status,
	power_draw_value, daily_emissions_value, daily_emissions_unit, category, image_url`

type scanner interface {
	Scan(dest ...any) error
}

func scanEquipment(row scanner) (models.Equipment, error) {
	var e models.Equipment
	var typ, status, category string
	err := row.Scan(&e.ID, &e.Name, &e.EquipmentID, &e.Manufacturer, &typ, &status,
		&e.PowerDraw.Value, &e.DailyEmissions.Value, &e.DailyEmissions.Unit, &category, &e.Image)
	if err != nil {
		return models.Equipment{}, err
	}
	e.Type = models.EquipmentType(typ)
	e.Status = models.EquipmentStatus(status)
	e.Category = models.EquipmentCategory(category)
	e.PowerDraw.Unit = models.UnitKW
	return e, nil
}

// ListActiveEquipment returns the organization's active equipment in
// creation order.
func (db *DB) ListActiveEquipment(ctx context.Context, orgID string) ([]models.Equipment, error) {
	rows, err := db.QueryContext(ctx, db.Q(`SELECT `+equipmentColumns+` FROM equipment
		WHERE organization_id = ? AND is_active = ? ORDER BY created_at, id`), orgID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEquipment returns one active item or ErrNotFound.
func (db *DB) GetEquipment(ctx context.Context, orgID, id string) (models.Equipment, error) {
	row := db.QueryRowContext(ctx, db.Q(`SELECT `+equipmentColumns+` FROM equipment
		WHERE organization_id = ? AND id = ? AND is_active = ?`), orgID, id, true)
	e, err := scanEquipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Equipment{}, ErrNotFound
	}
	return e, err
}

// InsertEquipment stores eq for the organization and returns the stored
// row. An empty id is generated; an empty status becomes active.
func (db *DB) InsertEquipment(ctx context.Context, orgID string, eq models.Equipment, createdBy string) (models.Equipment, error) {
	if eq.ID == "" {
		eq.ID = uuid.NewString()
	}
	if eq.Status == "" {
		eq.Status = models.StatusActive
	}
	if eq.DailyEmissions.Unit == "" {
		eq.DailyEmissions.Unit = models.UnitKgCO2e
	}
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO equipment
		(id, organization_id, name, equipment_id, manufacturer, type, status,
		 power_draw_value, daily_emissions_value, daily_emissions_unit, category, image_url, is_active, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		eq.ID, orgID, eq.Name, eq.EquipmentID, eq.Manufacturer, string(eq.Type), string(eq.Status),
		eq.PowerDraw.Value, eq.DailyEmissions.Value, eq.DailyEmissions.Unit, string(eq.Category), eq.Image, true, createdBy)
	if err != nil {
		return models.Equipment{}, fmt.Errorf("insert equipment: %w", err)
	}
	return db.GetEquipment(ctx, orgID, eq.ID)
}

// UpdateEquipment merges patch into an active item and returns the result.
func (db *DB) UpdateEquipment(ctx context.Context, orgID, id string, patch models.EquipmentPatch) (models.Equipment, error) {
	current, err := db.GetEquipment(ctx, orgID, id)
	if err != nil {
		return models.Equipment{}, err
	}
	eq := patch.Apply(current)
	_, err = db.ExecContext(ctx, db.Q(`UPDATE equipment SET
		name = ?, equipment_id = ?, manufacturer = ?, type = ?, status = ?,
		power_draw_value = ?, daily_emissions_value = ?, daily_emissions_unit = ?, category = ?, image_url = ?
		WHERE organization_id = ? AND id = ?`),
		eq.Name, eq.EquipmentID, eq.Manufacturer, string(eq.Type), string(eq.Status),
		eq.PowerDraw.Value, eq.DailyEmissions.Value, eq.DailyEmissions.Unit, string(eq.Category), eq.Image,
		orgID, id)
	if err != nil {
		return models.Equipment{}, fmt.Errorf("update equipment: %w", err)
	}
	return eq, nil
}

// SoftDeleteEquipment marks an item inactive. Recorded emissions are kept.
func (db *DB) SoftDeleteEquipment(ctx context.Context, orgID, id string) error {
	res, err := db.ExecContext(ctx, db.Q(`UPDATE equipment SET is_active = ?
		WHERE organization_id = ? AND id = ? AND is_active = ?`), false, orgID, id, true)
	if err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
