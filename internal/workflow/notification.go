package workflow

import (
	"context"
	"fmt"

	"orderDeliveryManagement/models"
	"orderDeliveryManagement/repository"
)

// notify records a notification without failing the surrounding operation.
// The state transition already committed; a lost notification is logged,
// never rolled back.
func (s *Service) notify(ctx context.Context, n *models.Notification) {
	n.CreatedAt = s.clock.Now()
	if _, err := s.notifications.Create(ctx, n); err != nil {
		s.log.Error().Err(err).
			Int64("user_id", n.UserID).
			Str("type", string(n.Type)).
			Msg("record notification")
	}
}

// NotificationList is one page of a user's notifications with its counters.
type NotificationList struct {
	Items  []models.Notification `json:"items"`
	Total  int64                 `json:"total"`
	Unread int64                 `json:"unread"`
}

// Notifications returns one page of the user's notifications plus total and
// unread counts for the same filter.
func (s *Service) Notifications(ctx context.Context, userID int64, p repository.ListNotificationsParams) (*NotificationList, error) {
	items, err := s.notifications.List(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	total, unread, err := s.notifications.Count(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, Total: total, Unread: unread}, nil
}

// MarkNotificationRead marks one notification read. Repeated calls keep the
// original read_at.
func (s *Service) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	ok, err := s.notifications.MarkRead(ctx, id, userID, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification read and returns
// how many were affected.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID, s.clock.Now())
}

// DeleteNotification removes one of the user's notifications.
func (s *Service) DeleteNotification(ctx context.Context, id, userID int64) error {
	ok, err := s.notifications.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// ActOnNotification executes the action attached to an actionable
// notification. Only order_delivered notifications are actionable: the
// customer either confirms receipt or disputes the delivery, which runs the
// corresponding order transition before the action is recorded.
func (s *Service) ActOnNotification(ctx context.Context, id, userID int64, action string) (*models.Notification, error) {
	if action != models.NotificationActionConfirmed && action != models.NotificationActionRejected {
		return nil, fmt.Errorf("action %q: %w", action, models.ErrInvalidInput)
	}
	n, err := s.notifications.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("notification %d: %w", id, models.ErrNotFound)
	}
	if n.Type != models.NotificationOrderDelivered || n.OrderAssignmentID == nil {
		return nil, fmt.Errorf("notification %d is not actionable: %w", id, models.ErrInvalidInput)
	}
	if n.ActionTaken != "" {
		return nil, fmt.Errorf("notification %d already acted on: %w", id, models.ErrInvalidTransition)
	}

	confirmed := action == models.NotificationActionConfirmed
	if _, err := s.ConfirmByCustomer(ctx, *n.OrderAssignmentID, userID, confirmed); err != nil {
		return nil, err
	}
	if _, err := s.notifications.SetAction(ctx, id, userID, action, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.notifications.GetByIDForUser(ctx, id, userID)
}
