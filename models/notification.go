package models

import "time"

// NotificationType is the closed enum of business events recorded for users.
type NotificationType string

const (
	NotificationOrderConfirmed    NotificationType = "order_confirmed"
	NotificationOrderAssigned     NotificationType = "order_assigned"
	NotificationOrderAccepted     NotificationType = "order_accepted"
	NotificationOrderRejected     NotificationType = "order_rejected"
	NotificationOrderInTransit    NotificationType = "order_in_transit"
	NotificationOrderDelivered    NotificationType = "order_delivered"
	NotificationDeliveryConfirmed NotificationType = "delivery_confirmed"
	NotificationDeliveryRejected  NotificationType = "delivery_rejected"
	NotificationOrderCancelled    NotificationType = "order_cancelled"
)

// Actions a user may take on an actionable notification.
const (
	NotificationActionConfirmed = "confirmed"
	NotificationActionRejected  = "rejected"
)

// Notification is an event record addressed to exactly one user. It is
// immutable once created except for the read state and action_taken.
type Notification struct {
	ID                int64            `db:"id" json:"id"`
	UserID            int64            `db:"user_id" json:"user_id"`
	Type              NotificationType `db:"notification_type" json:"notification_type"`
	Message           string           `db:"message" json:"message"`
	OrderID           *int64           `db:"order_id" json:"order_id,omitempty"`
	DriverID          *int64           `db:"driver_id" json:"driver_id,omitempty"`
	OrderAssignmentID *int64           `db:"order_assignment_id" json:"order_assignment_id,omitempty"`
	IsRead            bool             `db:"is_read" json:"is_read"`
	ActionTaken       string           `db:"action_taken" json:"action_taken,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	ReadAt            *time.Time       `db:"read_at" json:"read_at,omitempty"`
}
