// Package pdf renders invoice documents and stores them on disk. The default
// renderer produces a plain-text document from a template; swapping in a real
// PDF backend only requires another Renderer implementation.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"orderDeliveryManagement/models"
)

// Renderer turns an invoice and its line items into a document.
type Renderer interface {
	Render(inv *models.Invoice, items []models.OrderItem) ([]byte, error)
}

// Store persists a rendered document and returns the path it can be read
// back from.
type Store interface {
	Save(name string, data []byte) (string, error)
}

const invoiceTemplate = `INVOICE {{.Invoice.InvoiceNumber}}
Issued: {{.Invoice.IssuedAt.Format "2006-01-02"}}
Due:    {{.Invoice.DueDate}}

BILL TO
{{.Invoice.CustomerName}}
{{.Invoice.CustomerAddress}}
{{if .Invoice.CustomerEmail}}{{.Invoice.CustomerEmail}}
{{end}}{{if .Invoice.CustomerPhone}}{{.Invoice.CustomerPhone}}
{{end}}
DELIVERED BY
{{.Invoice.SellerName}}
{{if .Invoice.SellerEmail}}{{.Invoice.SellerEmail}}
{{end}}
ITEMS
{{range .Items}}  {{.Quantity}} x {{.ProductName}} @ {{.Price.StringFixed 2}} = {{.Subtotal.StringFixed 2}}
{{end}}
Subtotal:  {{.Invoice.Subtotal.StringFixed 2}}
Shipping:  {{.Invoice.ShippingCost.StringFixed 2}}
Tax:       {{.Invoice.Tax.StringFixed 2}}
TOTAL:     {{.Invoice.Total.StringFixed 2}}
`

// TemplateRenderer renders invoices from a text template.
type TemplateRenderer struct {
	tmpl *template.Template
}

func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{
		tmpl: template.Must(template.New("invoice").Parse(invoiceTemplate)),
	}
}

func (r *TemplateRenderer) Render(inv *models.Invoice, items []models.OrderItem) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("invoice is nil")
	}
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, struct {
		Invoice *models.Invoice
		Items   []models.OrderItem
	}{inv, items})
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// FileStore writes documents under a base directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save writes the document and returns its path. The name is sanitized to a
// single path element.
func (s *FileStore) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	name = filepath.Base(strings.ReplaceAll(name, string(os.PathSeparator), "_"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
