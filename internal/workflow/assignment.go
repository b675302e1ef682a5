package workflow

import (
	"context"
	"fmt"

	"orderDeliveryManagement/models"
)

// Assign creates an assignment binding the order to the driver and notifies
// the driver. The driver must exist and be active; the order must exist and
// not be in a terminal status. A non-rejected assignment for the same pair
// already existing yields models.ErrDuplicateAssignment.
func (s *Service) Assign(ctx context.Context, orderID, driverID int64) (*models.OrderAssignment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrInvalidTransition)
	}
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, fmt.Errorf("driver %d: %w", driverID, models.ErrNotFound)
	}
	if !driver.IsActive {
		return nil, fmt.Errorf("driver %d is inactive: %w", driverID, models.ErrInvalidDriver)
	}

	now := s.clock.Now()
	a, err := s.assignments.Create(ctx, &models.OrderAssignment{
		OrderID:    orderID,
		DriverID:   driverID,
		AssignedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		UserID:            driver.UserID,
		Type:              models.NotificationOrderAssigned,
		Message:           fmt.Sprintf("Order %s has been assigned to you", order.OrderNumber),
		OrderID:           &order.ID,
		DriverID:          &driver.ID,
		OrderAssignmentID: &a.ID,
	})
	s.log.Info().
		Int64("order_id", orderID).
		Int64("driver_id", driverID).
		Int64("assignment_id", a.ID).
		Msg("order assigned")
	return a, nil
}

// ownedAssignment loads the assignment and checks it belongs to the driver.
// Assignments of other drivers are reported as not found, not as forbidden.
func (s *Service) ownedAssignment(ctx context.Context, assignmentID, driverID int64) (*models.OrderAssignment, error) {
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.DriverID != driverID {
		return nil, fmt.Errorf("assignment %d: %w", assignmentID, models.ErrNotFound)
	}
	return a, nil
}

// Accept moves the driver's assignment from assigned to accepted, confirms
// the order, issues the invoice and notifies the customer. Losing the
// status race yields models.ErrInvalidTransition.
func (s *Service) Accept(ctx context.Context, assignmentID, driverID int64) (*models.OrderAssignment, error) {
	a, err := s.ownedAssignment(ctx, assignmentID, driverID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	ok, err := s.assignments.Transition(ctx, a.ID, models.AssignmentStatusAssigned, models.AssignmentStatusAccepted, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("assignment %d is not assigned: %w", a.ID, models.ErrInvalidTransition)
	}
	a.Status = models.AssignmentStatusAccepted
	a.AcceptedAt = &now

	// The order only advances if it is still pending; a losing swap here is
	// fine (e.g. an admin already confirmed it).
	confirmed, err := s.orders.UpdateStatusIf(ctx, a.OrderID, models.OrderStatusPending, models.OrderStatusConfirmed, now)
	if err != nil {
		return nil, err
	}

	// The acceptance already committed; invoice failure is retried via the
	// explicit regenerate path, never rolled back.
	if _, err := s.IssueInvoice(ctx, a); err != nil {
		s.log.Error().Err(err).Int64("assignment_id", a.ID).Msg("issue invoice")
	}

	order, err := s.orders.GetByID(ctx, a.OrderID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		if confirmed {
			s.notify(ctx, &models.Notification{
				UserID:  order.UserID,
				Type:    models.NotificationOrderConfirmed,
				Message: fmt.Sprintf("Your order %s has been confirmed", order.OrderNumber),
				OrderID: &order.ID,
			})
		}
		s.notify(ctx, &models.Notification{
			UserID:            order.UserID,
			Type:              models.NotificationOrderAccepted,
			Message:           fmt.Sprintf("Your order %s has been accepted for delivery", order.OrderNumber),
			OrderID:           &order.ID,
			DriverID:          &a.DriverID,
			OrderAssignmentID: &a.ID,
		})
	}
	s.log.Info().Int64("assignment_id", a.ID).Msg("assignment accepted")
	return a, nil
}

// Reject moves the driver's assignment from assigned to rejected with a
// reason and notifies the customer. The order itself is untouched so it can
// be reassigned.
func (s *Service) Reject(ctx context.Context, assignmentID, driverID int64, reason string) (*models.OrderAssignment, error) {
	a, err := s.ownedAssignment(ctx, assignmentID, driverID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	ok, err := s.assignments.Reject(ctx, a.ID, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("assignment %d is not assigned: %w", a.ID, models.ErrInvalidTransition)
	}

	order, err := s.orders.GetByID(ctx, a.OrderID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		s.notify(ctx, &models.Notification{
			UserID:            order.UserID,
			Type:              models.NotificationOrderRejected,
			Message:           fmt.Sprintf("Delivery of your order %s was declined and will be reassigned", order.OrderNumber),
			OrderID:           &order.ID,
			OrderAssignmentID: &a.ID,
		})
	}
	s.log.Info().
		Int64("assignment_id", a.ID).
		Str("reason", reason).
		Msg("assignment rejected")
	return s.assignments.GetByID(ctx, a.ID)
}

// Complete moves the driver's assignment from accepted to completed, marks
// the order delivered and sends the customer an actionable delivery
// notification.
func (s *Service) Complete(ctx context.Context, assignmentID, driverID int64) (*models.OrderAssignment, error) {
	a, err := s.ownedAssignment(ctx, assignmentID, driverID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	ok, err := s.assignments.Transition(ctx, a.ID, models.AssignmentStatusAccepted, models.AssignmentStatusCompleted, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("assignment %d is not accepted: %w", a.ID, models.ErrInvalidTransition)
	}
	a.Status = models.AssignmentStatusCompleted
	a.CompletedAt = &now

	// The order may have been confirmed, shipped or marked in transit in the
	// meantime; the first matching swap wins.
	for _, from := range []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusShipped, models.OrderStatusInTransit, models.OrderStatusPending} {
		moved, err := s.orders.UpdateStatusIf(ctx, a.OrderID, from, models.OrderStatusDelivered, now)
		if err != nil {
			return nil, err
		}
		if moved {
			break
		}
	}

	order, err := s.orders.GetByID(ctx, a.OrderID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		s.notify(ctx, &models.Notification{
			UserID:            order.UserID,
			Type:              models.NotificationOrderDelivered,
			Message:           fmt.Sprintf("Your order %s was delivered. Please confirm receipt.", order.OrderNumber),
			OrderID:           &order.ID,
			DriverID:          &a.DriverID,
			OrderAssignmentID: &a.ID,
		})
	}
	s.log.Info().Int64("assignment_id", a.ID).Msg("assignment completed")
	return a, nil
}

// ConfirmByCustomer records the customer's verdict on a completed delivery.
// Confirming moves the assignment to confirmed and the order to received.
// Disputing leaves the assignment completed and moves the order to disputed.
// The order swap out of delivered is the single once-only gate for both
// verdicts.
func (s *Service) ConfirmByCustomer(ctx context.Context, assignmentID, customerID int64, confirmed bool) (*models.OrderAssignment, error) {
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("assignment %d: %w", assignmentID, models.ErrNotFound)
	}
	order, err := s.orders.GetByIDForUser(ctx, a.OrderID, customerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("assignment %d: %w", assignmentID, models.ErrNotFound)
	}

	driver, err := s.drivers.GetByID(ctx, a.DriverID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	if a.Status != models.AssignmentStatusCompleted {
		return nil, fmt.Errorf("assignment %d is not completed: %w", a.ID, models.ErrInvalidTransition)
	}
	target := models.OrderStatusReceived
	if !confirmed {
		target = models.OrderStatusDisputed
	}
	// Both verdicts funnel through the one order swap out of delivered, so a
	// racing confirm and dispute cannot both win.
	ok, err := s.orders.UpdateStatusIf(ctx, order.ID, models.OrderStatusDelivered, target, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("order %d is not delivered: %w", order.ID, models.ErrInvalidTransition)
	}

	if confirmed {
		ok, err = s.assignments.Transition(ctx, a.ID, models.AssignmentStatusCompleted, models.AssignmentStatusConfirmed, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("assignment %d is not completed: %w", a.ID, models.ErrInvalidTransition)
		}
		if driver != nil {
			s.notify(ctx, &models.Notification{
				UserID:            driver.UserID,
				Type:              models.NotificationDeliveryConfirmed,
				Message:           fmt.Sprintf("Delivery of order %s was confirmed by the customer", order.OrderNumber),
				OrderID:           &order.ID,
				DriverID:          &driver.ID,
				OrderAssignmentID: &a.ID,
			})
		}
	} else if driver != nil {
		s.notify(ctx, &models.Notification{
			UserID:            driver.UserID,
			Type:              models.NotificationDeliveryRejected,
			Message:           fmt.Sprintf("The customer disputed delivery of order %s", order.OrderNumber),
			OrderID:           &order.ID,
			DriverID:          &driver.ID,
			OrderAssignmentID: &a.ID,
		})
	}
	s.log.Info().
		Int64("assignment_id", a.ID).
		Bool("confirmed", confirmed).
		Msg("delivery confirmation recorded")
	return s.assignments.GetByID(ctx, a.ID)
}

// AssignmentsForDriver lists a driver's assignments, optionally filtered by
// status.
func (s *Service) AssignmentsForDriver(ctx context.Context, driverID int64, status *models.AssignmentStatus) ([]models.OrderAssignment, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("status %q: %w", *status, models.ErrInvalidInput)
	}
	return s.assignments.ListByDriver(ctx, driverID, status)
}
