package workflow

import (
	"context"
	"fmt"

	"orderDeliveryManagement/models"
)

// DriverForUser resolves the driver record behind an authenticated user.
func (s *Service) DriverForUser(ctx context.Context, userID int64) (*models.Driver, error) {
	d, err := s.drivers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("driver for user %d: %w", userID, models.ErrNotFound)
	}
	return d, nil
}

// RegisterDriver creates a driver profile for an existing user with the
// driver role.
func (s *Service) RegisterDriver(ctx context.Context, userID int64, phone, vehicleType, vehiclePlate string) (*models.Driver, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	if u.Role != models.RoleDriver {
		return nil, fmt.Errorf("user %d has role %s: %w", userID, u.Role, models.ErrInvalidDriver)
	}
	if existing, err := s.drivers.GetByUserID(ctx, userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("user %d already has a driver profile: %w", userID, models.ErrInvalidInput)
	}
	return s.drivers.Create(ctx, &models.Driver{
		UserID:       userID,
		Phone:        phone,
		VehicleType:  vehicleType,
		VehiclePlate: vehiclePlate,
		IsActive:     true,
	}, s.clock.Now())
}

// ActiveDrivers lists drivers eligible for new assignments.
func (s *Service) ActiveDrivers(ctx context.Context) ([]models.Driver, error) {
	return s.drivers.ListActive(ctx)
}

// SetDriverActive toggles whether a driver may receive new assignments.
// Existing assignments are unaffected.
func (s *Service) SetDriverActive(ctx context.Context, driverID int64, active bool) error {
	return s.drivers.SetActive(ctx, driverID, active, s.clock.Now())
}

// Availability returns the driver's stored schedule, or the default Monday
// to Friday schedule when none has been saved yet.
func (s *Service) Availability(ctx context.Context, driverID int64) (*models.DriverAvailability, error) {
	av, err := s.drivers.GetAvailability(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if av == nil {
		av = &models.DriverAvailability{
			DriverID:            driverID,
			IsAvailable:         true,
			WorkingDays:         models.DefaultWorkingDays(),
			MaxDeliveriesPerDay: 10,
		}
	}
	return av, nil
}

// SetAvailability validates and stores the driver's schedule.
func (s *Service) SetAvailability(ctx context.Context, av *models.DriverAvailability) error {
	if av == nil {
		return fmt.Errorf("availability: %w", models.ErrInvalidInput)
	}
	if err := av.WorkingDays.Validate(); err != nil {
		return err
	}
	return s.drivers.UpsertAvailability(ctx, av, s.clock.Now())
}
