package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orderDeliveryManagement/models"
)

// DeliveryRepository persists DeliveryDay and DeliveryRoute rows.
type DeliveryRepository struct {
	db *sql.DB
}

func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

const deliveryDayColumns = `id, driver_id, delivery_date, num_deliveries, total_earnings,
performance_rating, is_completed, notes, created_at, updated_at`

func (r *DeliveryRepository) GetDayForDriver(ctx context.Context, id, driverID int64) (*models.DeliveryDay, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+deliveryDayColumns+` FROM delivery_days WHERE id = ? AND driver_id = ?`, id, driverID)
	d, err := scanDeliveryDay(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// GetOrCreateDay returns the driver's delivery day for the date, inserting an
// empty one when absent. The UNIQUE(driver_id, delivery_date) constraint keeps
// concurrent callers from creating two rows for the same date.
func (r *DeliveryRepository) GetOrCreateDay(ctx context.Context, driverID int64, date string, now time.Time) (*models.DeliveryDay, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO delivery_days (driver_id, delivery_date, created_at, updated_at)
VALUES (?,?,?,?) ON CONFLICT(driver_id, delivery_date) DO NOTHING`, driverID, date, now, now)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+deliveryDayColumns+` FROM delivery_days WHERE driver_id = ? AND delivery_date = ?`, driverID, date)
	return scanDeliveryDay(row)
}

// ListDays returns stored delivery days in [fromDate, toDate] inclusive.
func (r *DeliveryRepository) ListDays(ctx context.Context, driverID int64, fromDate, toDate string) ([]models.DeliveryDay, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+deliveryDayColumns+` FROM delivery_days
WHERE driver_id = ? AND delivery_date >= ? AND delivery_date <= ?
ORDER BY delivery_date ASC`, driverID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DeliveryDay
	for rows.Next() {
		d, err := scanDeliveryDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpdateDay stores the recomputed counters for an existing day.
func (r *DeliveryRepository) UpdateDay(ctx context.Context, day *models.DeliveryDay, now time.Time) error {
	if day == nil {
		return errors.New("delivery day is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	day.UpdatedAt = now
	res, err := r.db.ExecContext(ctx, `UPDATE delivery_days SET num_deliveries = ?, total_earnings = ?, performance_rating = ?, is_completed = ?, notes = ?, updated_at = ? WHERE id = ?`,
		day.NumDeliveries, day.TotalEarnings, string(day.PerformanceRating), day.IsCompleted, day.Notes, now, day.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delivery day %d: %w", day.ID, models.ErrNotFound)
	}
	return nil
}

const deliveryRouteColumns = `id, delivery_day_id, order_assignment_id, route_order, status,
started_at, completed_at, notes, created_at, updated_at`

// RoutesByDay returns a day's routes in route order.
func (r *DeliveryRepository) RoutesByDay(ctx context.Context, dayID int64) ([]models.DeliveryRoute, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+deliveryRouteColumns+` FROM delivery_routes WHERE delivery_day_id = ? ORDER BY route_order ASC, id ASC`, dayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DeliveryRoute
	for rows.Next() {
		rt, err := scanDeliveryRoute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}

// CreateRoute appends a route step. When RouteOrder is zero it is placed after
// the day's current last step.
func (r *DeliveryRepository) CreateRoute(ctx context.Context, rt *models.DeliveryRoute, now time.Time) (*models.DeliveryRoute, error) {
	if rt == nil {
		return nil, errors.New("route is nil")
	}
	if rt.Status == "" {
		rt.Status = models.RouteStatusPending
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if rt.RouteOrder == 0 {
		err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(route_order), 0) + 1 FROM delivery_routes WHERE delivery_day_id = ?`, rt.DeliveryDayID).Scan(&rt.RouteOrder)
		if err != nil {
			return nil, err
		}
	}
	rt.CreatedAt = now
	rt.UpdatedAt = now
	res, err := r.db.ExecContext(ctx, `INSERT INTO delivery_routes (delivery_day_id, order_assignment_id, route_order, status, notes, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`,
		rt.DeliveryDayID, nullableID(rt.OrderAssignmentID), rt.RouteOrder, string(rt.Status), rt.Notes, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rt.ID = id
	return rt, nil
}

// TransitionRoute is the compare-and-swap for route steps. started_at is set
// once on entering in_transit, completed_at once on delivered or failed.
func (r *DeliveryRepository) TransitionRoute(ctx context.Context, routeID int64, from, to models.RouteStatus, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var query string
	switch to {
	case models.RouteStatusInTransit:
		query = `UPDATE delivery_routes SET status = ?, started_at = COALESCE(started_at, ?), updated_at = ? WHERE id = ? AND status = ?`
	case models.RouteStatusDelivered, models.RouteStatusFailed:
		query = `UPDATE delivery_routes SET status = ?, completed_at = COALESCE(completed_at, ?), updated_at = ? WHERE id = ? AND status = ?`
	default:
		return false, fmt.Errorf("invalid route target status %q", to)
	}
	res, err := r.db.ExecContext(ctx, query, string(to), at, at, routeID, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TransferAssignment moves one still-open assignment to toDate, creating the
// destination delivery day if needed. Both writes happen in one transaction;
// returns false when the assignment was no longer in {assigned, accepted}.
func (r *DeliveryRepository) TransferAssignment(ctx context.Context, assignmentID, driverID int64, toDate string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO delivery_days (driver_id, delivery_date, created_at, updated_at)
VALUES (?,?,?,?) ON CONFLICT(driver_id, delivery_date) DO NOTHING`, driverID, toDate, now, now)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	res, err := tx.ExecContext(ctx, `UPDATE order_assignments SET scheduled_delivery_date = ?
WHERE id = ? AND driver_id = ? AND status IN ('assigned','accepted')`, toDate, assignmentID, driverID)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanDeliveryDay(s rowScanner) (*models.DeliveryDay, error) {
	var d models.DeliveryDay
	var rating string
	err := s.Scan(&d.ID, &d.DriverID, &d.DeliveryDate, &d.NumDeliveries, &d.TotalEarnings,
		&rating, &d.IsCompleted, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.PerformanceRating = models.PerformanceRating(rating)
	return &d, nil
}

func scanDeliveryRoute(s rowScanner) (*models.DeliveryRoute, error) {
	var rt models.DeliveryRoute
	var status string
	var assignmentID sql.NullInt64
	var startedAt, completedAt sql.NullTime
	err := s.Scan(&rt.ID, &rt.DeliveryDayID, &assignmentID, &rt.RouteOrder, &status,
		&startedAt, &completedAt, &rt.Notes, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rt.Status = models.RouteStatus(status)
	if assignmentID.Valid {
		v := assignmentID.Int64
		rt.OrderAssignmentID = &v
	}
	rt.StartedAt = nullTimePtr(startedAt)
	rt.CompletedAt = nullTimePtr(completedAt)
	return &rt, nil
}
