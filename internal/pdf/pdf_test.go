package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"orderDeliveryManagement/models"
)

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		InvoiceNumber:   "INV-20250310-A1B2C3",
		CustomerName:    "Amira Ben Salah",
		CustomerAddress: "5 Rue de Carthage, Tunis",
		SellerName:      "Karim Trabelsi",
		Subtotal:        decimal.RequireFromString("53.30"),
		ShippingCost:    decimal.NewFromInt(10),
		Tax:             decimal.Zero,
		Total:           decimal.RequireFromString("63.30"),
		IssuedAt:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		DueDate:         "2025-04-09",
	}
}

func TestTemplateRendererIncludesTotals(t *testing.T) {
	r := NewTemplateRenderer()
	data, err := r.Render(sampleInvoice(), []models.OrderItem{
		{ProductName: "Olive oil 1L", Price: decimal.RequireFromString("19.90"), Quantity: 2, Subtotal: decimal.RequireFromString("39.80")},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	for _, want := range []string{"INV-20250310-A1B2C3", "Amira Ben Salah", "Olive oil 1L", "63.30", "2025-04-09"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestTemplateRendererNilInvoice(t *testing.T) {
	if _, err := NewTemplateRenderer().Render(nil, nil); err == nil {
		t.Error("nil invoice accepted")
	}
}

func TestFileStoreSave(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	path, err := s.Save("INV-20250310-A1B2C3.pdf", []byte("doc"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "doc" {
		t.Errorf("content = %q", got)
	}
}

func TestFileStoreSanitizesName(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	path, err := s.Save("../escape.pdf", []byte("doc"))
	if err != nil {
		t.Fatal(err)
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		t.Errorf("path %q escaped the store dir", path)
	}
}
