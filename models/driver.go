package models

import (
	"fmt"
	"time"
)

// Driver represents a delivery driver linked to a user account.
// One driver can hold many concurrent assignments.
type Driver struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Phone        string    `db:"phone" json:"phone"`
	VehicleType  string    `db:"vehicle_type" json:"vehicle_type,omitempty"`
	VehiclePlate string    `db:"vehicle_plate" json:"vehicle_plate,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DaySchedule is the availability window for a single weekday.
type DaySchedule struct {
	Available bool   `json:"available"`
	Start     string `json:"start_time"` // HH:MM
	End       string `json:"end_time"`   // HH:MM
}

// WorkingDays maps a weekday name ("Monday".."Sunday") to its schedule.
type WorkingDays map[string]DaySchedule

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Validate checks weekday keys and HH:MM windows.
func (w WorkingDays) Validate() error {
	for day, sched := range w {
		if !validWeekday(day) {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, day)
		}
		if !sched.Available {
			continue
		}
		start, err := time.Parse("15:04", sched.Start)
		if err != nil {
			return fmt.Errorf("%w: %s start_time %q is not HH:MM", ErrInvalidInput, day, sched.Start)
		}
		end, err := time.Parse("15:04", sched.End)
		if err != nil {
			return fmt.Errorf("%w: %s end_time %q is not HH:MM", ErrInvalidInput, day, sched.End)
		}
		if !start.Before(end) {
			return fmt.Errorf("%w: %s start_time must be before end_time", ErrInvalidInput, day)
		}
	}
	return nil
}

func validWeekday(day string) bool {
	for _, d := range weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// DefaultWorkingDays is the schedule applied when a driver has not configured
// availability yet: weekdays 08:00-18:00, weekend off.
func DefaultWorkingDays() WorkingDays {
	w := make(WorkingDays, len(weekdays))
	for _, day := range weekdays {
		switch day {
		case "Saturday", "Sunday":
			w[day] = DaySchedule{Available: false}
		default:
			w[day] = DaySchedule{Available: true, Start: "08:00", End: "18:00"}
		}
	}
	return w
}

// DriverAvailability holds a driver's working schedule. WorkingDays is stored
// as a JSON column and validated at the boundary before persisting.
type DriverAvailability struct {
	ID                  int64       `db:"id" json:"id"`
	DriverID            int64       `db:"driver_id" json:"driver_id"`
	IsAvailable         bool        `db:"is_available" json:"is_available"`
	WorkingDays         WorkingDays `db:"working_days" json:"working_days"`
	MaxDeliveriesPerDay int         `db:"max_deliveries_per_day" json:"max_deliveries_per_day"`
	Notes               string      `db:"notes" json:"notes,omitempty"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}
