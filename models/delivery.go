package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerformanceRating grades a delivery day.
type PerformanceRating string

const (
	PerformanceExcellent PerformanceRating = "excellent"
	PerformanceGood      PerformanceRating = "good"
	PerformanceNormal    PerformanceRating = "normal"
	PerformancePoor      PerformanceRating = "poor"
)

// DeliveryDay is a per-driver, per-date aggregate of assignments.
//
// It is a cache, not the source of truth: calendar reads recompute the counts
// from live assignment rows and only fall back to stored DeliveryDay rows for
// dates with no matching assignments.
type DeliveryDay struct {
	ID                int64             `db:"id" json:"id"`
	DriverID          int64             `db:"driver_id" json:"driver_id"`
	DeliveryDate      string            `db:"delivery_date" json:"delivery_date"` // YYYY-MM-DD
	NumDeliveries     int               `db:"num_deliveries" json:"num_deliveries"`
	TotalEarnings     decimal.Decimal   `db:"total_earnings" json:"total_earnings"`
	PerformanceRating PerformanceRating `db:"performance_rating" json:"performance_rating"`
	IsCompleted       bool              `db:"is_completed" json:"is_completed"`
	Notes             string            `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// RouteStatus is the state of a single delivery route step.
type RouteStatus string

const (
	RouteStatusPending   RouteStatus = "pending"
	RouteStatusInTransit RouteStatus = "in_transit"
	RouteStatusDelivered RouteStatus = "delivered"
	RouteStatusFailed    RouteStatus = "failed"
)

// DeliveryRoute is an ordered step within a delivery day, optionally bound to
// one assignment. StartedAt/CompletedAt are set once by their transitions.
type DeliveryRoute struct {
	ID                int64       `db:"id" json:"id"`
	DeliveryDayID     int64       `db:"delivery_day_id" json:"delivery_day_id"`
	OrderAssignmentID *int64      `db:"order_assignment_id" json:"order_assignment_id,omitempty"`
	RouteOrder        int         `db:"route_order" json:"route_order"`
	Status            RouteStatus `db:"status" json:"status"`
	StartedAt         *time.Time  `db:"started_at" json:"started_at,omitempty"`
	CompletedAt       *time.Time  `db:"completed_at" json:"completed_at,omitempty"`
	Notes             string      `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}
