package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"orderDeliveryManagement/models"
)

// CalendarEntry is one assignment as shown inside a calendar day.
type CalendarEntry struct {
	AssignmentID int64                   `json:"assignment_id"`
	OrderID      int64                   `json:"order_id"`
	OrderNumber  string                  `json:"order_number"`
	OrderTotal   decimal.Decimal         `json:"order_total"`
	Status       models.AssignmentStatus `json:"status"`
}

// CalendarDay is the recomputed view of one date in a driver's ledger.
type CalendarDay struct {
	Date      string          `json:"date"` // YYYY-MM-DD
	Pending   int             `json:"pending"`
	Accepted  int             `json:"accepted"`
	Completed int             `json:"completed"`
	Confirmed int             `json:"confirmed"`
	Earnings  decimal.Decimal `json:"earnings"`
	Entries   []CalendarEntry `json:"entries"`
}

// Calendar builds the driver's delivery calendar for [fromDate, toDate]. The
// counts and earnings are recomputed from live assignment rows on every read;
// stored delivery_days rows only contribute dates that no assignment covers
// anymore. Earnings sum the order totals of completed and confirmed
// assignments.
func (s *Service) Calendar(ctx context.Context, driverID int64, fromDate, toDate string) ([]CalendarDay, error) {
	if err := validDateRange(fromDate, toDate); err != nil {
		return nil, err
	}
	items, err := s.assignments.ListByDriverDateRange(ctx, driverID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*CalendarDay)
	for _, it := range items {
		day := byDate[it.ScheduledDeliveryDate]
		if day == nil {
			day = &CalendarDay{Date: it.ScheduledDeliveryDate, Earnings: decimal.Zero}
			byDate[it.ScheduledDeliveryDate] = day
		}
		switch it.Status {
		case models.AssignmentStatusAssigned:
			day.Pending++
		case models.AssignmentStatusAccepted:
			day.Accepted++
		case models.AssignmentStatusCompleted:
			day.Completed++
			day.Earnings = day.Earnings.Add(it.OrderTotal)
		case models.AssignmentStatusConfirmed:
			day.Confirmed++
			day.Earnings = day.Earnings.Add(it.OrderTotal)
		}
		day.Entries = append(day.Entries, CalendarEntry{
			AssignmentID: it.ID,
			OrderID:      it.OrderID,
			OrderNumber:  it.OrderNumber,
			OrderTotal:   it.OrderTotal,
			Status:       it.Status,
		})
	}

	stored, err := s.deliveries.ListDays(ctx, driverID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	for _, d := range stored {
		if _, covered := byDate[d.DeliveryDate]; covered {
			continue
		}
		byDate[d.DeliveryDate] = &CalendarDay{
			Date:      d.DeliveryDate,
			Completed: d.NumDeliveries,
			Earnings:  d.TotalEarnings,
		}
	}

	out := make([]CalendarDay, 0, len(byDate))
	for _, day := range byDate {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// TransferResult reports the outcome of a TransferUndelivered run.
type TransferResult struct {
	FromDate    string  `json:"from_date"`
	ToDate      string  `json:"to_date"`
	Transferred int     `json:"transferred"`
	Skipped     []int64 `json:"skipped,omitempty"` // assignment ids that changed state mid-run
}

// TransferUndelivered moves every still-open assignment (assigned or
// accepted) scheduled on fromDate to the next day, creating the destination
// delivery day when needed. Each assignment moves in its own transaction, so
// a failure on one does not undo the others; an assignment that completed or
// got rejected between the listing and its move is skipped, not failed.
func (s *Service) TransferUndelivered(ctx context.Context, driverID int64, fromDate string) (*TransferResult, error) {
	from, err := time.Parse(models.DateLayout, fromDate)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", fromDate, models.ErrInvalidInput)
	}
	toDate := from.AddDate(0, 0, 1).Format(models.DateLayout)

	open, err := s.assignments.ListUndelivered(ctx, driverID, fromDate)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{FromDate: fromDate, ToDate: toDate}
	var errs []error
	for _, a := range open {
		moved, err := s.deliveries.TransferAssignment(ctx, a.ID, driverID, toDate, s.clock.Now())
		if err != nil {
			errs = append(errs, fmt.Errorf("assignment %d: %w", a.ID, err))
			continue
		}
		if !moved {
			result.Skipped = append(result.Skipped, a.ID)
			continue
		}
		result.Transferred++
	}
	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	s.log.Info().
		Int64("driver_id", driverID).
		Str("from", fromDate).
		Str("to", toDate).
		Int("transferred", result.Transferred).
		Msg("undelivered assignments transferred")
	return result, nil
}

// DeliveryDayDetail is a stored day joined with its route steps.
type DeliveryDayDetail struct {
	models.DeliveryDay
	Routes []models.DeliveryRoute `json:"routes"`
}

// DeliveryDay returns one of the driver's stored delivery days with routes.
func (s *Service) DeliveryDay(ctx context.Context, dayID, driverID int64) (*DeliveryDayDetail, error) {
	day, err := s.deliveries.GetDayForDriver(ctx, dayID, driverID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, fmt.Errorf("delivery day %d: %w", dayID, models.ErrNotFound)
	}
	routes, err := s.deliveries.RoutesByDay(ctx, day.ID)
	if err != nil {
		return nil, err
	}
	return &DeliveryDayDetail{DeliveryDay: *day, Routes: routes}, nil
}

// DeliveryDayUpdate carries the driver-editable fields of a stored day.
// Nil fields are left unchanged.
type DeliveryDayUpdate struct {
	Notes             *string                   `json:"notes"`
	IsCompleted       *bool                     `json:"is_completed"`
	PerformanceRating *models.PerformanceRating `json:"performance_rating"`
}

// UpdateDeliveryDay applies the driver's edits to one of their stored days.
// The recomputed counters stay untouched; only notes, the completion flag and
// the performance rating are editable.
func (s *Service) UpdateDeliveryDay(ctx context.Context, dayID, driverID int64, upd DeliveryDayUpdate) (*models.DeliveryDay, error) {
	day, err := s.deliveries.GetDayForDriver(ctx, dayID, driverID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, fmt.Errorf("delivery day %d: %w", dayID, models.ErrNotFound)
	}
	if upd.PerformanceRating != nil {
		switch *upd.PerformanceRating {
		case models.PerformanceExcellent, models.PerformanceGood, models.PerformanceNormal, models.PerformancePoor:
		default:
			return nil, fmt.Errorf("performance rating %q: %w", *upd.PerformanceRating, models.ErrInvalidInput)
		}
		day.PerformanceRating = *upd.PerformanceRating
	}
	if upd.Notes != nil {
		day.Notes = *upd.Notes
	}
	if upd.IsCompleted != nil {
		day.IsCompleted = *upd.IsCompleted
	}
	if err := s.deliveries.UpdateDay(ctx, day, s.clock.Now()); err != nil {
		return nil, err
	}
	return day, nil
}

// AddRoute appends a route step to the driver's day for the given date.
func (s *Service) AddRoute(ctx context.Context, driverID int64, date string, assignmentID *int64, notes string) (*models.DeliveryRoute, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("date %q: %w", date, models.ErrInvalidInput)
	}
	now := s.clock.Now()
	day, err := s.deliveries.GetOrCreateDay(ctx, driverID, date, now)
	if err != nil {
		return nil, err
	}
	return s.deliveries.CreateRoute(ctx, &models.DeliveryRoute{
		DeliveryDayID:     day.ID,
		OrderAssignmentID: assignmentID,
		Notes:             notes,
	}, now)
}

// AdvanceRoute runs one route transition: pending -> in_transit, or
// in_transit -> delivered/failed.
func (s *Service) AdvanceRoute(ctx context.Context, routeID, driverID, dayID int64, to models.RouteStatus) error {
	day, err := s.deliveries.GetDayForDriver(ctx, dayID, driverID)
	if err != nil {
		return err
	}
	if day == nil {
		return fmt.Errorf("delivery day %d: %w", dayID, models.ErrNotFound)
	}
	var from models.RouteStatus
	switch to {
	case models.RouteStatusInTransit:
		from = models.RouteStatusPending
	case models.RouteStatusDelivered, models.RouteStatusFailed:
		from = models.RouteStatusInTransit
	default:
		return fmt.Errorf("route status %q: %w", to, models.ErrInvalidInput)
	}
	ok, err := s.deliveries.TransitionRoute(ctx, routeID, from, to, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("route %d is not %s: %w", routeID, from, models.ErrInvalidTransition)
	}
	return nil
}

func validDateRange(fromDate, toDate string) error {
	from, err := time.Parse(models.DateLayout, fromDate)
	if err != nil {
		return fmt.Errorf("from date %q: %w", fromDate, models.ErrInvalidInput)
	}
	to, err := time.Parse(models.DateLayout, toDate)
	if err != nil {
		return fmt.Errorf("to date %q: %w", toDate, models.ErrInvalidInput)
	}
	if to.Before(from) {
		return fmt.Errorf("range %s..%s: %w", fromDate, toDate, models.ErrInvalidInput)
	}
	return nil
}
