// Package workflow implements the business operations of the delivery
// backend: order creation, the assignment lifecycle, invoice issuance,
// notifications and the per-driver delivery ledger.
//
// Every state transition is delegated to a conditional repository update, so
// concurrent requests race on the database row and at most one wins.
package workflow

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"orderDeliveryManagement/internal/clock"
	"orderDeliveryManagement/internal/pdf"
	"orderDeliveryManagement/repository"
)

// TaxPolicy computes the tax for an invoice from its subtotal and shipping.
// The default policy charges no tax.
type TaxPolicy func(subtotal, shipping decimal.Decimal) decimal.Decimal

// ZeroTax is the default TaxPolicy.
func ZeroTax(_, _ decimal.Decimal) decimal.Decimal { return decimal.Zero }

// Service wires the repositories together and owns all business rules.
type Service struct {
	users         repository.UserRepositoryI
	orders        repository.OrderRepositoryI
	drivers       repository.DriverRepositoryI
	assignments   repository.AssignmentRepositoryI
	invoices      repository.InvoiceRepositoryI
	notifications repository.NotificationRepositoryI
	deliveries    repository.DeliveryRepositoryI

	renderer pdf.Renderer
	store    pdf.Store

	clock       clock.Clock
	log         zerolog.Logger
	tax         TaxPolicy
	shippingFee decimal.Decimal
}

// Deps collects the service's collaborators.
type Deps struct {
	Users         repository.UserRepositoryI
	Orders        repository.OrderRepositoryI
	Drivers       repository.DriverRepositoryI
	Assignments   repository.AssignmentRepositoryI
	Invoices      repository.InvoiceRepositoryI
	Notifications repository.NotificationRepositoryI
	Deliveries    repository.DeliveryRepositoryI

	Renderer pdf.Renderer
	Store    pdf.Store

	Clock       clock.Clock
	Logger      zerolog.Logger
	Tax         TaxPolicy
	ShippingFee decimal.Decimal
}

func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Tax == nil {
		d.Tax = ZeroTax
	}
	return &Service{
		users:         d.Users,
		orders:        d.Orders,
		drivers:       d.Drivers,
		assignments:   d.Assignments,
		invoices:      d.Invoices,
		notifications: d.Notifications,
		deliveries:    d.Deliveries,
		renderer:      d.Renderer,
		store:         d.Store,
		clock:         d.Clock,
		log:           d.Logger,
		tax:           d.Tax,
		shippingFee:   d.ShippingFee,
	}
}
