package repository

import (
	"context"
	"testing"
	"time"

	"orderDeliveryManagement/models"
)

func TestGetOrCreateDayIdempotent(t *testing.T) {
	d := openDB(t)
	drv := seedDriver(t, d, "drv1")
	repo := NewDeliveryRepository(d)
	date := "2025-03-10"

	day1, err := repo.GetOrCreateDay(context.Background(), drv.ID, date, testTime)
	if err != nil {
		t.Fatal(err)
	}
	day2, err := repo.GetOrCreateDay(context.Background(), drv.ID, date, testTime.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if day1.ID != day2.ID {
		t.Fatalf("two rows for same (driver, date): %d, %d", day1.ID, day2.ID)
	}
}

func TestTransferAssignmentMovesOnlyOpen(t *testing.T) {
	d := openDB(t)
	customer := seedUser(t, d, "cust1", models.RoleCustomer)
	drv := seedDriver(t, d, "drv1")
	assignments := NewAssignmentRepository(d)
	repo := NewDeliveryRepository(d)

	o1 := seedOrder(t, d, customer.ID, "ORD-1")
	o2 := seedOrder(t, d, customer.ID, "ORD-2")
	open := seedAssignment(t, d, o1.ID, drv.ID)
	done := seedAssignment(t, d, o2.ID, drv.ID)
	for _, step := range [][2]models.AssignmentStatus{
		{models.AssignmentStatusAssigned, models.AssignmentStatusAccepted},
		{models.AssignmentStatusAccepted, models.AssignmentStatusCompleted},
	} {
		if ok, err := assignments.Transition(context.Background(), done.ID, step[0], step[1], testTime); err != nil || !ok {
			t.Fatalf("advance to %s: ok=%v err=%v", step[1], ok, err)
		}
	}

	toDate := "2025-03-11"
	moved, err := repo.TransferAssignment(context.Background(), open.ID, drv.ID, toDate, testTime)
	if err != nil || !moved {
		t.Fatalf("transfer open: moved=%v err=%v", moved, err)
	}
	moved, err = repo.TransferAssignment(context.Background(), done.ID, drv.ID, toDate, testTime)
	if err != nil {
		t.Fatal(err)
	}
	if moved {
		t.Fatal("completed assignment was transferred")
	}

	got, err := assignments.GetByID(context.Background(), open.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ScheduledDeliveryDate != toDate {
		t.Errorf("scheduled date = %q, want %q", got.ScheduledDeliveryDate, toDate)
	}
	// Destination day was created as part of the transfer.
	days, err := repo.ListDays(context.Background(), drv.ID, toDate, toDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Fatalf("destination days = %d, want 1", len(days))
	}
}

func TestRouteTransitions(t *testing.T) {
	d := openDB(t)
	drv := seedDriver(t, d, "drv1")
	repo := NewDeliveryRepository(d)

	day, err := repo.GetOrCreateDay(context.Background(), drv.ID, "2025-03-10", testTime)
	if err != nil {
		t.Fatal(err)
	}
	r1, err := repo.CreateRoute(context.Background(), &models.DeliveryRoute{DeliveryDayID: day.ID}, testTime)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := repo.CreateRoute(context.Background(), &models.DeliveryRoute{DeliveryDayID: day.ID}, testTime)
	if err != nil {
		t.Fatal(err)
	}
	if r2.RouteOrder <= r1.RouteOrder {
		t.Errorf("route order not increasing: %d then %d", r1.RouteOrder, r2.RouteOrder)
	}

	start := testTime.Add(time.Minute)
	ok, err := repo.TransitionRoute(context.Background(), r1.ID, models.RouteStatusPending, models.RouteStatusInTransit, start)
	if err != nil || !ok {
		t.Fatalf("start route: ok=%v err=%v", ok, err)
	}
	// Delivering straight from pending must lose.
	ok, err = repo.TransitionRoute(context.Background(), r2.ID, models.RouteStatusInTransit, models.RouteStatusDelivered, start)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("pending route delivered without transit")
	}

	end := start.Add(time.Minute)
	ok, err = repo.TransitionRoute(context.Background(), r1.ID, models.RouteStatusInTransit, models.RouteStatusDelivered, end)
	if err != nil || !ok {
		t.Fatalf("deliver route: ok=%v err=%v", ok, err)
	}
	routes, err := repo.RoutesByDay(context.Background(), day.ID)
	if err != nil {
		t.Fatal(err)
	}
	if routes[0].StartedAt == nil || !routes[0].StartedAt.Equal(start) {
		t.Errorf("started_at = %v, want %v", routes[0].StartedAt, start)
	}
	if routes[0].CompletedAt == nil || !routes[0].CompletedAt.Equal(end) {
		t.Errorf("completed_at = %v, want %v", routes[0].CompletedAt, end)
	}
}
