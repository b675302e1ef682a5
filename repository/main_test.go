package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"orderDeliveryManagement/internal/testutil"
	"orderDeliveryManagement/models"
)

var testTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, d *sql.DB, username, role string) *models.User {
	t.Helper()
	u, err := NewUserRepository(d).Create(context.Background(), &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedDriver(t *testing.T, d *sql.DB, username string) *models.Driver {
	t.Helper()
	u := seedUser(t, d, username, models.RoleDriver)
	drv, err := NewDriverRepository(d).Create(context.Background(), &models.Driver{
		UserID:   u.ID,
		Phone:    "555-0100",
		IsActive: true,
	}, testTime)
	if err != nil {
		t.Fatalf("seed driver %s: %v", username, err)
	}
	return drv
}

func seedOrder(t *testing.T, d *sql.DB, userID int64, number string) *models.Order {
	t.Helper()
	o, err := NewOrderRepository(d).Create(context.Background(), &models.Order{
		OrderNumber:     number,
		UserID:          userID,
		ShippingAddress: "5 Rue de Carthage",
		ShippingCity:    "Tunis",
		Subtotal:        decimal.NewFromInt(40),
		ShippingCost:    decimal.NewFromInt(10),
		Total:           decimal.NewFromInt(50),
		CreatedAt:       testTime,
		UpdatedAt:       testTime,
	}, []models.OrderItem{
		{ProductID: 1, ProductName: "Olive oil 1L", Price: decimal.NewFromInt(20), Quantity: 2, Subtotal: decimal.NewFromInt(40)},
	})
	if err != nil {
		t.Fatalf("seed order %s: %v", number, err)
	}
	return o
}

func seedAssignment(t *testing.T, d *sql.DB, orderID, driverID int64) *models.OrderAssignment {
	t.Helper()
	a, err := NewAssignmentRepository(d).Create(context.Background(), &models.OrderAssignment{
		OrderID:    orderID,
		DriverID:   driverID,
		AssignedAt: testTime,
	})
	if err != nil {
		t.Fatalf("seed assignment order=%d driver=%d: %v", orderID, driverID, err)
	}
	return a
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	return testutil.OpenDB(t)
}
