package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orderDeliveryManagement/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, notification_type, message, order_id, driver_id,
order_assignment_id, is_read, action_taken, created_at, read_at`

// Create appends a notification record.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n == nil {
		return nil, errors.New("notification is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO notifications (user_id, notification_type, message, order_id, driver_id, order_assignment_id, is_read, action_taken, created_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		n.UserID, string(n.Type), n.Message, nullableID(n.OrderID), nullableID(n.DriverID), nullableID(n.OrderAssignmentID), n.IsRead, n.ActionTaken, n.CreatedAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	n.ID = id
	return n, nil
}

func (r *NotificationRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// ListNotificationsParams filters and paginates a user's notifications.
type ListNotificationsParams struct {
	IsRead *bool
	Type   *models.NotificationType
	Limit  int
	Offset int
}

// List returns a user's notifications, most recent first.
func (r *NotificationRepository) List(ctx context.Context, userID int64, p ListNotificationsParams) ([]models.Notification, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if p.IsRead != nil {
		query += ` AND is_read = ?`
		args = append(args, *p.IsRead)
	}
	if p.Type != nil {
		query += ` AND notification_type = ?`
		args = append(args, string(*p.Type))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, p.Limit, p.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// Count returns the total matching the filter and the unread count within it.
func (r *NotificationRepository) Count(ctx context.Context, userID int64, p ListNotificationsParams) (total, unread int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_read = 0 THEN 1 ELSE 0 END), 0) FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if p.IsRead != nil {
		query += ` AND is_read = ?`
		args = append(args, *p.IsRead)
	}
	if p.Type != nil {
		query += ` AND notification_type = ?`
		args = append(args, string(*p.Type))
	}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&total, &unread)
	return total, unread, err
}

// MarkRead sets is_read; read_at is stamped only on the first call, so the
// operation is idempotent.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1, read_at = COALESCE(read_at, ?) WHERE id = ? AND user_id = ?`, at, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAllRead marks every unread notification read and returns the count.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1, read_at = COALESCE(read_at, ?) WHERE user_id = ? AND is_read = 0`, at, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a notification owned by the user.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetAction records the user's action and marks the notification read.
func (r *NotificationRepository) SetAction(ctx context.Context, id, userID int64, action string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET action_taken = ?, is_read = 1, read_at = COALESCE(read_at, ?) WHERE id = ? AND user_id = ?`, action, at, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullableID(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func scanNotification(s rowScanner) (*models.Notification, error) {
	var n models.Notification
	var typ string
	var orderID, driverID, assignmentID sql.NullInt64
	var readAt sql.NullTime
	err := s.Scan(&n.ID, &n.UserID, &typ, &n.Message, &orderID, &driverID, &assignmentID,
		&n.IsRead, &n.ActionTaken, &n.CreatedAt, &readAt)
	if err != nil {
		return nil, err
	}
	n.Type = models.NotificationType(typ)
	if orderID.Valid {
		v := orderID.Int64
		n.OrderID = &v
	}
	if driverID.Valid {
		v := driverID.Int64
		n.DriverID = &v
	}
	if assignmentID.Valid {
		v := assignmentID.Int64
		n.OrderAssignmentID = &v
	}
	n.ReadAt = nullTimePtr(readAt)
	return &n, nil
}
