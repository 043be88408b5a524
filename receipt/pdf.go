package receipt

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"embroidery-backend/model"
)

type Details struct {
	OrderID      string
	Amount       float64
	LineItems    []model.LineItem
	CustomerName string
	ZipLinks     []string
}

// Generate renders the printable order receipt. The document is transient:
// it is attached to the order summary mail and not retained.
func Generate(d Details) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "Thank You for Your Order!", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetLineWidth(0.4)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Order ID: %s", d.OrderID), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "BU", 16)
	pdf.CellFormat(0, 8, "Customer Information", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 6, fmt.Sprintf("Name: %s", d.CustomerName), "", 1, "L", false, 0, "")
	for _, link := range d.ZipLinks {
		pdf.CellFormat(0, 6, fmt.Sprintf("Zip file: %s", link), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "BU", 16)
	pdf.CellFormat(0, 8, "Ordered Items", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetLineWidth(0.2)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(2)
	for _, item := range d.LineItems {
		pdf.CellFormat(0, 7, item.Name, "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Amount: %.2f USD", d.Amount), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, "Thank you for shopping with us! If you have any questions, feel free to contact our support team.", "", "L", false)
	pdf.CellFormat(0, 5, "info@rgembroiderydesigns.com", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
