package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderDeliveryManagement/models"
)

type DriverRepository struct {
	db *sql.DB
}

func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

const driverColumns = `id, user_id, phone, vehicle_type, vehicle_plate, is_active, created_at, updated_at`

// Create inserts a new driver. IsActive defaults to true.
func (r *DriverRepository) Create(ctx context.Context, d *models.Driver, now time.Time) (*models.Driver, error) {
	if d == nil {
		return nil, errors.New("driver is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	d.CreatedAt = now
	d.UpdatedAt = now
	res, err := r.db.ExecContext(ctx, `INSERT INTO drivers (user_id, phone, vehicle_type, vehicle_plate, is_active, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`,
		d.UserID, d.Phone, d.VehicleType, d.VehiclePlate, d.IsActive, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = ?`, id)
	return scanDriver(row)
}

func (r *DriverRepository) GetByUserID(ctx context.Context, userID int64) (*models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE user_id = ?`, userID)
	return scanDriver(row)
}

// ListActive returns active drivers ordered by id asc.
func (r *DriverRepository) ListActive(ctx context.Context) ([]models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE is_active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Driver
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.UserID, &d.Phone, &d.VehicleType, &d.VehiclePlate, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DriverRepository) SetActive(ctx context.Context, id int64, active bool, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drivers SET is_active = ?, updated_at = ? WHERE id = ?`, active, now, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("driver %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// GetAvailability returns the driver's availability row, or nil when none has
// been stored yet.
func (r *DriverRepository) GetAvailability(ctx context.Context, driverID int64) (*models.DriverAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var av models.DriverAvailability
	var workingDays string
	err := r.db.QueryRowContext(ctx, `SELECT id, driver_id, is_available, working_days, max_deliveries_per_day, notes, updated_at FROM driver_availability WHERE driver_id = ?`, driverID).
		Scan(&av.ID, &av.DriverID, &av.IsAvailable, &workingDays, &av.MaxDeliveriesPerDay, &av.Notes, &av.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if workingDays != "" && workingDays != "{}" {
		if err := json.Unmarshal([]byte(workingDays), &av.WorkingDays); err != nil {
			return nil, fmt.Errorf("decode working_days for driver %d: %w", driverID, err)
		}
	}
	return &av, nil
}

// UpsertAvailability validates and stores the schedule, replacing any
// previous row for the driver.
func (r *DriverRepository) UpsertAvailability(ctx context.Context, av *models.DriverAvailability, now time.Time) error {
	if av == nil {
		return errors.New("availability is nil")
	}
	if err := av.WorkingDays.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(av.WorkingDays)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	av.UpdatedAt = now
	_, err = r.db.ExecContext(ctx, `INSERT INTO driver_availability (driver_id, is_available, working_days, max_deliveries_per_day, notes, updated_at)
VALUES (?,?,?,?,?,?)
ON CONFLICT(driver_id) DO UPDATE SET
  is_available = excluded.is_available,
  working_days = excluded.working_days,
  max_deliveries_per_day = excluded.max_deliveries_per_day,
  notes = excluded.notes,
  updated_at = excluded.updated_at`,
		av.DriverID, av.IsAvailable, string(raw), av.MaxDeliveriesPerDay, av.Notes, now)
	return err
}

func scanDriver(row *sql.Row) (*models.Driver, error) {
	var d models.Driver
	err := row.Scan(&d.ID, &d.UserID, &d.Phone, &d.VehicleType, &d.VehiclePlate, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
