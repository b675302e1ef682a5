package repository

import (
	"context"
	"time"

	"orderDeliveryManagement/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// OrderRepositoryI defines operations on Order entities. UpdateStatusIf is the
// compare-and-swap used for every lifecycle transition.
type OrderRepositoryI interface {
	Create(ctx context.Context, o *models.Order, items []models.OrderItem) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	ItemsByOrder(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus, now time.Time) error
	UpdateStatusIf(ctx context.Context, id int64, from, to models.OrderStatus, now time.Time) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus, now time.Time) error
}

// DriverRepositoryI defines operations on Driver entities and their availability.
type DriverRepositoryI interface {
	Create(ctx context.Context, d *models.Driver, now time.Time) (*models.Driver, error)
	GetByID(ctx context.Context, id int64) (*models.Driver, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Driver, error)
	ListActive(ctx context.Context) ([]models.Driver, error)
	SetActive(ctx context.Context, id int64, active bool, now time.Time) error
	GetAvailability(ctx context.Context, driverID int64) (*models.DriverAvailability, error)
	UpsertAvailability(ctx context.Context, av *models.DriverAvailability, now time.Time) error
}

// AssignmentRepositoryI defines operations on OrderAssignment entities.
// Transition and Reject are conditional updates: they succeed only when the
// persisted status still equals `from`, giving at-most-one-winner semantics.
type AssignmentRepositoryI interface {
	Create(ctx context.Context, a *models.OrderAssignment) (*models.OrderAssignment, error)
	GetByID(ctx context.Context, id int64) (*models.OrderAssignment, error)
	ListByDriver(ctx context.Context, driverID int64, status *models.AssignmentStatus) ([]models.OrderAssignment, error)
	ListByDriverDateRange(ctx context.Context, driverID int64, fromDate, toDate string) ([]AssignmentWithOrder, error)
	ListUndelivered(ctx context.Context, driverID int64, date string) ([]models.OrderAssignment, error)
	Transition(ctx context.Context, id int64, from, to models.AssignmentStatus, at time.Time) (bool, error)
	Reject(ctx context.Context, id int64, reason string, at time.Time) (bool, error)
}

// InvoiceRepositoryI defines operations on Invoice entities.
type InvoiceRepositoryI interface {
	Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	GetByID(ctx context.Context, id int64) (*models.Invoice, error)
	GetByAssignment(ctx context.Context, assignmentID int64) (*models.Invoice, error)
	GetByOrder(ctx context.Context, orderID int64) (*models.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*models.Invoice, error)
	ListByDriver(ctx context.Context, driverID int64, limit, offset int) ([]models.Invoice, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Invoice, error)
	SetPDFPath(ctx context.Context, id int64, path string) error
	UpdateStatus(ctx context.Context, id int64, status models.InvoiceStatus, at time.Time) error
}

// NotificationRepositoryI defines operations on Notification entities.
type NotificationRepositoryI interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*models.Notification, error)
	List(ctx context.Context, userID int64, p ListNotificationsParams) ([]models.Notification, error)
	Count(ctx context.Context, userID int64, p ListNotificationsParams) (total, unread int64, err error)
	MarkRead(ctx context.Context, id, userID int64, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
	SetAction(ctx context.Context, id, userID int64, action string, at time.Time) (bool, error)
}

// DeliveryRepositoryI defines operations on DeliveryDay and DeliveryRoute
// entities. TransferAssignment re-dates one assignment and upserts the
// destination day inside a single transaction.
type DeliveryRepositoryI interface {
	GetDayForDriver(ctx context.Context, id, driverID int64) (*models.DeliveryDay, error)
	GetOrCreateDay(ctx context.Context, driverID int64, date string, now time.Time) (*models.DeliveryDay, error)
	ListDays(ctx context.Context, driverID int64, fromDate, toDate string) ([]models.DeliveryDay, error)
	UpdateDay(ctx context.Context, day *models.DeliveryDay, now time.Time) error
	RoutesByDay(ctx context.Context, dayID int64) ([]models.DeliveryRoute, error)
	CreateRoute(ctx context.Context, r *models.DeliveryRoute, now time.Time) (*models.DeliveryRoute, error)
	TransitionRoute(ctx context.Context, routeID int64, from, to models.RouteStatus, at time.Time) (bool, error)
	TransferAssignment(ctx context.Context, assignmentID, driverID int64, toDate string, now time.Time) (bool, error)
}
