package models

import "time"

// AssignmentStatus represents the lifecycle state of an order assignment.
//
// assigned -> accepted -> completed -> confirmed
// assigned -> rejected
//
// rejected and confirmed are terminal. Every transition is guarded by a
// compare-and-swap on the persisted status, so at most one of two concurrent
// requests can win a transition.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusAccepted  AssignmentStatus = "accepted"
	AssignmentStatusRejected  AssignmentStatus = "rejected"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusConfirmed AssignmentStatus = "confirmed"
)

// IsValid reports whether s is a known assignment status.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusAssigned, AssignmentStatusAccepted, AssignmentStatusRejected,
		AssignmentStatusCompleted, AssignmentStatusConfirmed:
		return true
	default:
		return false
	}
}

func (s AssignmentStatus) String() string { return string(s) }

// OrderAssignment binds one order to one driver with its own lifecycle.
// At most one non-rejected assignment may exist per (order, driver) pair;
// the repository enforces this with a partial unique index.
//
// The *_at timestamps are set exactly once by their transition and never
// cleared. ScheduledDeliveryDate (YYYY-MM-DD) buckets the assignment into the
// delivery ledger.
type OrderAssignment struct {
	ID                    int64            `db:"id" json:"id"`
	OrderID               int64            `db:"order_id" json:"order_id"`
	DriverID              int64            `db:"driver_id" json:"driver_id"`
	Status                AssignmentStatus `db:"status" json:"status"`
	AssignedAt            time.Time        `db:"assigned_at" json:"assigned_at"`
	AcceptedAt            *time.Time       `db:"accepted_at" json:"accepted_at,omitempty"`
	RejectedAt            *time.Time       `db:"rejected_at" json:"rejected_at,omitempty"`
	CompletedAt           *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	ConfirmedAt           *time.Time       `db:"confirmed_at" json:"confirmed_at,omitempty"`
	RejectionReason       string           `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ScheduledDeliveryDate string           `db:"scheduled_delivery_date" json:"scheduled_delivery_date,omitempty"`
}

// DateLayout is the storage format for date-only fields.
const DateLayout = "2006-01-02"
