package workflow

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderDeliveryManagement/internal/clock"
	"orderDeliveryManagement/internal/pdf"
	"orderDeliveryManagement/internal/testutil"
	"orderDeliveryManagement/models"
	"orderDeliveryManagement/repository"
)

// memStore keeps rendered documents in memory.
type memStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (m *memStore) Save(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = data
	return "mem://" + name, nil
}

type harness struct {
	svc   *Service
	db    *sql.DB
	clk   *clock.Fixed
	store *memStore

	users         *repository.UserRepository
	orders        *repository.OrderRepository
	drivers       *repository.DriverRepository
	assignments   *repository.AssignmentRepository
	invoices      *repository.InvoiceRepository
	notifications *repository.NotificationRepository
	deliveries    *repository.DeliveryRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	d := testutil.OpenDB(t)
	clk := &clock.Fixed{T: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	h := &harness{
		db:            d,
		clk:           clk,
		store:         &memStore{},
		users:         repository.NewUserRepository(d),
		orders:        repository.NewOrderRepository(d),
		drivers:       repository.NewDriverRepository(d),
		assignments:   repository.NewAssignmentRepository(d),
		invoices:      repository.NewInvoiceRepository(d),
		notifications: repository.NewNotificationRepository(d),
		deliveries:    repository.NewDeliveryRepository(d),
	}
	h.svc = NewService(Deps{
		Users:         h.users,
		Orders:        h.orders,
		Drivers:       h.drivers,
		Assignments:   h.assignments,
		Invoices:      h.invoices,
		Notifications: h.notifications,
		Deliveries:    h.deliveries,
		Renderer:      pdf.NewTemplateRenderer(),
		Store:         h.store,
		Clock:         clk,
		Logger:        zerolog.Nop(),
		ShippingFee:   decimal.NewFromInt(10),
	})
	return h
}

func (h *harness) seedCustomer(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := h.users.Create(context.Background(), &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Address:  "5 Rue de Carthage",
		Role:     models.RoleCustomer,
	})
	require.NoError(t, err)
	return u
}

func (h *harness) seedDriver(t *testing.T, username string) *models.Driver {
	t.Helper()
	u, err := h.users.Create(context.Background(), &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleDriver,
	})
	require.NoError(t, err)
	d, err := h.drivers.Create(context.Background(), &models.Driver{
		UserID: u.ID, Phone: "555-0100", IsActive: true,
	}, h.clk.Now())
	require.NoError(t, err)
	return d
}

func (h *harness) seedOrder(t *testing.T, userID int64) *models.Order {
	t.Helper()
	order, _, err := h.svc.CreateOrder(context.Background(), userID, NewOrder{
		PaymentMethod:   models.PaymentMethodOnline,
		ShippingAddress: "5 Rue de Carthage",
		ShippingCity:    "Tunis",
		Items: []NewOrderItem{
			{ProductID: 1, ProductName: "Olive oil 1L", Price: decimal.NewFromInt(20), Quantity: 2},
		},
	})
	require.NoError(t, err)
	return order
}

func (h *harness) lastNotification(t *testing.T, userID int64) *models.Notification {
	t.Helper()
	items, err := h.notifications.List(context.Background(), userID, repository.ListNotificationsParams{Limit: 1})
	require.NoError(t, err)
	require.NotEmpty(t, items, "expected a notification for user %d", userID)
	return &items[0]
}

func TestCreateOrderTotals(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")

	order, items, err := h.svc.CreateOrder(context.Background(), customer.ID, NewOrder{
		ShippingAddress: "5 Rue de Carthage",
		Items: []NewOrderItem{
			{ProductID: 1, ProductName: "Olive oil 1L", Price: decimal.RequireFromString("19.90"), Quantity: 2},
			{ProductID: 2, ProductName: "Harissa jar", Price: decimal.RequireFromString("4.50"), Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	wantSubtotal := decimal.RequireFromString("53.30")
	assert.True(t, order.Subtotal.Equal(wantSubtotal), "subtotal = %s", order.Subtotal)
	assert.True(t, order.Total.Equal(wantSubtotal.Add(decimal.NewFromInt(10))), "total = %s", order.Total)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-20250310-"), "order number %q", order.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")

	_, _, err := h.svc.CreateOrder(context.Background(), customer.ID, NewOrder{ShippingAddress: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidInput, "empty items")

	_, _, err = h.svc.CreateOrder(context.Background(), customer.ID, NewOrder{
		ShippingAddress: "x",
		Items:           []NewOrderItem{{ProductName: "p", Price: decimal.NewFromInt(1), Quantity: 0}},
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput, "zero quantity")
}

func TestAssignValidation(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)

	_, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)

	// Same pair again while the first assignment is live.
	_, err = h.svc.Assign(context.Background(), order.ID, drv.ID)
	assert.ErrorIs(t, err, models.ErrDuplicateAssignment)

	// Inactive drivers take no new work.
	require.NoError(t, h.svc.SetDriverActive(context.Background(), drv.ID, false))
	order2 := h.seedOrder(t, customer.ID)
	_, err = h.svc.Assign(context.Background(), order2.ID, drv.ID)
	assert.ErrorIs(t, err, models.ErrInvalidDriver)

	// Terminal orders cannot be assigned.
	_, err = h.svc.SetOrderStatus(context.Background(), order2.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	drv2 := h.seedDriver(t, "sami")
	_, err = h.svc.Assign(context.Background(), order2.ID, drv2.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAcceptIssuesInvoiceOnce(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)

	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)

	accepted, err := h.svc.Accept(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	gotOrder, err := h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, gotOrder.Status)

	inv, err := h.invoices.GetByAssignment(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-20250310-"), "invoice number %q", inv.InvoiceNumber)
	assert.Equal(t, "2025-04-09", inv.DueDate, "due 30 days after issuance")
	assert.True(t, inv.Subtotal.Equal(order.Subtotal))
	assert.True(t, inv.Total.Equal(order.Total))
	assert.True(t, inv.Tax.IsZero(), "default tax policy is zero")
	assert.Equal(t, "Test amira", inv.CustomerName)
	assert.NotEmpty(t, inv.PDFPath, "document rendered on issue")

	// Issuing again hands back the same invoice untouched.
	again, err := h.svc.IssueInvoice(context.Background(), accepted)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, again.ID)
	assert.Equal(t, inv.InvoiceNumber, again.InvoiceNumber)

	n := h.lastNotification(t, customer.ID)
	assert.Equal(t, models.NotificationOrderAccepted, n.Type)
}

func TestConcurrentAcceptOneWinner(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)
	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)

	const n = 6
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Accept(context.Background(), a.ID, drv.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var winners, losers int
	for err := range errs {
		switch {
		case err == nil:
			winners++
		default:
			require.ErrorIs(t, err, models.ErrInvalidTransition)
			losers++
		}
	}
	assert.Equal(t, 1, winners, "exactly one accept wins")
	assert.Equal(t, n-1, losers)

	inv, err := h.invoices.GetByAssignment(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, inv, "the winner issued exactly one invoice")
}

func TestConcurrentAcceptRejectOneWinner(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)
	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := h.svc.Accept(context.Background(), a.ID, drv.ID)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := h.svc.Reject(context.Background(), a.ID, drv.ID, "too far")
		errs <- err
	}()
	wg.Wait()
	close(errs)

	var winners int
	for err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, models.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, winners, "accept and reject race: exactly one wins")

	got, err := h.assignments.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Contains(t, []models.AssignmentStatus{
		models.AssignmentStatusAccepted, models.AssignmentStatusRejected,
	}, got.Status)
}

func TestRejectLeavesOrderReassignable(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)
	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)

	rejected, err := h.svc.Reject(context.Background(), a.ID, drv.ID, "vehicle breakdown")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusRejected, rejected.Status)
	assert.Equal(t, "vehicle breakdown", rejected.RejectionReason)
	require.NotNil(t, rejected.RejectedAt)

	// The order stays where it was and the pair is free again.
	gotOrder, err := h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, gotOrder.Status)

	_, err = h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)

	// No invoice was issued for the rejected assignment.
	inv, err := h.invoices.GetByAssignment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, inv)

	n := h.lastNotification(t, customer.ID)
	assert.Equal(t, models.NotificationOrderRejected, n.Type)
}

func TestCompleteThenCustomerConfirms(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)

	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)

	h.clk.Advance(2 * time.Hour)
	completed, err := h.svc.Complete(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusCompleted, completed.Status)

	gotOrder, err := h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, gotOrder.Status)

	// Completing twice loses the swap.
	_, err = h.svc.Complete(context.Background(), a.ID, drv.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	confirmed, err := h.svc.ConfirmByCustomer(context.Background(), a.ID, customer.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	gotOrder, err = h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, gotOrder.Status)

	drvUser, err := h.drivers.GetByID(context.Background(), drv.ID)
	require.NoError(t, err)
	n := h.lastNotification(t, drvUser.UserID)
	assert.Equal(t, models.NotificationDeliveryConfirmed, n.Type)
}

func TestCustomerDisputeIsOnceOnly(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)

	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Complete(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)

	disputed, err := h.svc.ConfirmByCustomer(context.Background(), a.ID, customer.ID, false)
	require.NoError(t, err)
	// The assignment keeps its completed mark; only the order is disputed.
	assert.Equal(t, models.AssignmentStatusCompleted, disputed.Status)

	gotOrder, err := h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDisputed, gotOrder.Status)

	// A second verdict of either kind is rejected.
	_, err = h.svc.ConfirmByCustomer(context.Background(), a.ID, customer.ID, false)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = h.svc.ConfirmByCustomer(context.Background(), a.ID, customer.ID, true)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestConcurrentConfirmDisputeOneWinner(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)

	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Complete(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := h.svc.ConfirmByCustomer(context.Background(), a.ID, customer.ID, true)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := h.svc.ConfirmByCustomer(context.Background(), a.ID, customer.ID, false)
		errs <- err
	}()
	wg.Wait()
	close(errs)

	var winners int
	for err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, models.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, winners, "confirm and dispute race: exactly one wins")

	gotAssignment, err := h.assignments.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	gotOrder, err := h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)

	// Whichever verdict won, the pair must agree: a confirmed assignment goes
	// with a received order, a disputed order leaves the assignment completed.
	switch gotOrder.Status {
	case models.OrderStatusReceived:
		assert.Equal(t, models.AssignmentStatusConfirmed, gotAssignment.Status)
	case models.OrderStatusDisputed:
		assert.Equal(t, models.AssignmentStatusCompleted, gotAssignment.Status)
	default:
		t.Fatalf("order ended in %s", gotOrder.Status)
	}
}

func TestConfirmRequiresOrderOwner(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	stranger := h.seedCustomer(t, "walid")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)

	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Complete(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)

	_, err = h.svc.ConfirmByCustomer(context.Background(), a.ID, stranger.ID, true)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestActOnDeliveredNotification(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)

	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Complete(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)

	delivered := h.lastNotification(t, customer.ID)
	require.Equal(t, models.NotificationOrderDelivered, delivered.Type)

	acted, err := h.svc.ActOnNotification(context.Background(), delivered.ID, customer.ID, models.NotificationActionConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationActionConfirmed, acted.ActionTaken)
	assert.True(t, acted.IsRead)

	gotOrder, err := h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, gotOrder.Status)

	// The action is recorded once.
	_, err = h.svc.ActOnNotification(context.Background(), delivered.ID, customer.ID, models.NotificationActionRejected)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestTransferUndeliveredMovesOpenOnly(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")

	var open []*models.OrderAssignment
	for i := 0; i < 2; i++ {
		order := h.seedOrder(t, customer.ID)
		a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
		require.NoError(t, err)
		open = append(open, a)
	}
	doneOrder := h.seedOrder(t, customer.ID)
	done, err := h.svc.Assign(context.Background(), doneOrder.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), done.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Complete(context.Background(), done.ID, drv.ID)
	require.NoError(t, err)

	result, err := h.svc.TransferUndelivered(context.Background(), drv.ID, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Transferred)
	assert.Equal(t, "2025-03-11", result.ToDate)
	assert.Empty(t, result.Skipped)

	for _, a := range open {
		got, err := h.assignments.GetByID(context.Background(), a.ID)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-11", got.ScheduledDeliveryDate)
	}
	got, err := h.assignments.GetByID(context.Background(), done.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", got.ScheduledDeliveryDate, "completed assignment stays put")

	// A second run finds nothing left to move.
	result, err = h.svc.TransferUndelivered(context.Background(), drv.ID, "2025-03-10")
	require.NoError(t, err)
	assert.Zero(t, result.Transferred)
}

func TestCalendarRecomputesFromAssignments(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")

	o1 := h.seedOrder(t, customer.ID)
	a1, err := h.svc.Assign(context.Background(), o1.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), a1.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Complete(context.Background(), a1.ID, drv.ID)
	require.NoError(t, err)

	o2 := h.seedOrder(t, customer.ID)
	_, err = h.svc.Assign(context.Background(), o2.ID, drv.ID)
	require.NoError(t, err)

	days, err := h.svc.Calendar(context.Background(), drv.ID, "2025-03-10", "2025-03-12")
	require.NoError(t, err)
	require.Len(t, days, 1)

	day := days[0]
	assert.Equal(t, "2025-03-10", day.Date)
	assert.Equal(t, 1, day.Pending)
	assert.Equal(t, 1, day.Completed)
	assert.True(t, day.Earnings.Equal(o1.Total), "earnings = %s, want %s", day.Earnings, o1.Total)
	assert.Len(t, day.Entries, 2)
}

func TestCalendarRejectsBadRange(t *testing.T) {
	h := newHarness(t)
	drv := h.seedDriver(t, "karim")

	_, err := h.svc.Calendar(context.Background(), drv.ID, "2025-03-12", "2025-03-10")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = h.svc.Calendar(context.Background(), drv.ID, "12/03/2025", "2025-03-13")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCancelOrder(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	order := h.seedOrder(t, customer.ID)

	cancelled, err := h.svc.CancelOrder(context.Background(), order.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	_, err = h.svc.CancelOrder(context.Background(), order.ID, customer.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAvailabilityDefaultsAndValidation(t *testing.T) {
	h := newHarness(t)
	drv := h.seedDriver(t, "karim")

	av, err := h.svc.Availability(context.Background(), drv.ID)
	require.NoError(t, err)
	assert.True(t, av.IsAvailable)
	assert.False(t, av.WorkingDays["Sunday"].Available)
	assert.Equal(t, "08:00", av.WorkingDays["Monday"].Start)

	bad := &models.DriverAvailability{
		DriverID:    drv.ID,
		WorkingDays: models.WorkingDays{"Monday": {Available: true, Start: "18:00", End: "08:00"}},
	}
	err = h.svc.SetAvailability(context.Background(), bad)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	good := &models.DriverAvailability{
		DriverID:            drv.ID,
		IsAvailable:         true,
		WorkingDays:         models.WorkingDays{"Saturday": {Available: true, Start: "10:00", End: "14:00"}},
		MaxDeliveriesPerDay: 5,
	}
	require.NoError(t, h.svc.SetAvailability(context.Background(), good))

	stored, err := h.svc.Availability(context.Background(), drv.ID)
	require.NoError(t, err)
	assert.True(t, stored.WorkingDays["Saturday"].Available)
	assert.Equal(t, 5, stored.MaxDeliveriesPerDay)
}

func TestUpdateDeliveryDay(t *testing.T) {
	h := newHarness(t)
	drv := h.seedDriver(t, "karim")
	other := h.seedDriver(t, "sami")

	day, err := h.deliveries.GetOrCreateDay(context.Background(), drv.ID, "2025-03-10", h.clk.Now())
	require.NoError(t, err)

	notes := "two failed doorbells, left with neighbor"
	done := true
	rating := models.PerformanceGood
	updated, err := h.svc.UpdateDeliveryDay(context.Background(), day.ID, drv.ID, DeliveryDayUpdate{
		Notes:             &notes,
		IsCompleted:       &done,
		PerformanceRating: &rating,
	})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, models.PerformanceGood, updated.PerformanceRating)

	stored, err := h.deliveries.GetDayForDriver(context.Background(), day.ID, drv.ID)
	require.NoError(t, err)
	assert.Equal(t, notes, stored.Notes)
	assert.True(t, stored.IsCompleted)
	assert.Equal(t, models.PerformanceGood, stored.PerformanceRating)

	// Omitted fields stay put.
	updated, err = h.svc.UpdateDeliveryDay(context.Background(), day.ID, drv.ID, DeliveryDayUpdate{})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.True(t, updated.IsCompleted)

	bad := models.PerformanceRating("stellar")
	_, err = h.svc.UpdateDeliveryDay(context.Background(), day.ID, drv.ID, DeliveryDayUpdate{PerformanceRating: &bad})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	// Another driver's day is invisible.
	_, err = h.svc.UpdateDeliveryDay(context.Background(), day.ID, other.ID, DeliveryDayUpdate{Notes: &notes})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIssueInvoiceSharedOrderReturnsExisting(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv1 := h.seedDriver(t, "karim")
	drv2 := h.seedDriver(t, "sami")
	order := h.seedOrder(t, customer.ID)

	a1, err := h.svc.Assign(context.Background(), order.ID, drv1.ID)
	require.NoError(t, err)
	a2, err := h.svc.Assign(context.Background(), order.ID, drv2.ID)
	require.NoError(t, err)

	_, err = h.svc.Accept(context.Background(), a1.ID, drv1.ID)
	require.NoError(t, err)
	first, err := h.invoices.GetByAssignment(context.Background(), a1.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	// The second assignment hits the one-invoice-per-order constraint and must
	// hand back the order's existing invoice, never a nil one.
	accepted2, err := h.svc.Accept(context.Background(), a2.ID, drv2.ID)
	require.NoError(t, err)
	inv, err := h.svc.IssueInvoice(context.Background(), accepted2)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, first.ID, inv.ID)
	assert.Equal(t, a1.ID, inv.OrderAssignmentID, "the first acceptance keeps the invoice")

	all, err := h.invoices.ListAll(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1, "one invoice per order")
}

func TestRegeneratePDFKeepsSnapshot(t *testing.T) {
	h := newHarness(t)
	customer := h.seedCustomer(t, "amira")
	drv := h.seedDriver(t, "karim")
	order := h.seedOrder(t, customer.ID)

	a, err := h.svc.Assign(context.Background(), order.ID, drv.ID)
	require.NoError(t, err)
	_, err = h.svc.Accept(context.Background(), a.ID, drv.ID)
	require.NoError(t, err)

	inv, err := h.invoices.GetByAssignment(context.Background(), a.ID)
	require.NoError(t, err)

	regen, err := h.svc.RegeneratePDF(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, regen.InvoiceNumber)
	assert.True(t, regen.Total.Equal(inv.Total))
	assert.NotEmpty(t, regen.PDFPath)
}
