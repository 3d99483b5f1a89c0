package export

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/ukydev/fleet-backoffice/internal/amountwords"
	"github.com/ukydev/fleet-backoffice/internal/models"
)

// SlipHeader is the context printed on a salary slip.
type SlipHeader struct {
	Company       string
	DriverName    string
	VehicleNumber string
}

// InvoiceHeader is the context printed on an invoice.
type InvoiceHeader struct {
	Company       string
	ClientName    string
	VehicleNumber string
	VehicleType   string
}

type line struct {
	label  string
	detail string
	amount string
}

// SalarySlip renders the pay breakdown of a generated salary.
func SalarySlip(s models.DriverSalary, h SlipHeader) ([]byte, error) {
	c := s.Calculation
	pdf := newDocument(h.Company, "SALARY SLIP")

	keyValue(pdf, "Driver", h.DriverName)
	keyValue(pdf, "Vehicle", h.VehicleNumber)
	keyValue(pdf, "Period", period(s.Month, s.Year))
	keyValue(pdf, "Generated", s.GeneratedAt.Format("02 Jan 2006"))
	pdf.Ln(4)

	table(pdf, []line{
		{"Base salary", fmt.Sprintf("%d base days", c.BaseDays), Rupees(c.BaseSalary)},
		{"Extra days", fmt.Sprintf("%d x %s", c.ExtraDays, Rupees(c.ExtraDayRate)), Rupees(c.ExtraDaysAmount)},
		{"Extra hours", fmt.Sprintf("%.1f h x %s", c.TotalDriverExtraHours, Rupees(c.ExtraHourRate)), Rupees(c.ExtraHoursAmount)},
		{"Gross salary", fmt.Sprintf("%d working days, %.1f h", c.TotalWorkingDays, c.TotalHours), Rupees(c.TotalSalary)},
		{"Less advances", fmt.Sprintf("%d advance(s)", len(s.DeductedAdvanceIDs)), Rupees(-c.AdvanceDeduction)},
	})
	total(pdf, "Net pay", Rupees(c.FinalSalary))
	words(pdf, c.AmountInWords)

	if s.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Notes: "+s.Notes, "", "", false)
	}
	return output(pdf)
}

// Invoice renders a generated bill.
func Invoice(b models.Bill, h InvoiceHeader) ([]byte, error) {
	c := b.Calculation
	pdf := newDocument(h.Company, "INVOICE")

	keyValue(pdf, "Invoice no", b.BillNumber)
	keyValue(pdf, "Billed to", h.ClientName)
	keyValue(pdf, "Vehicle", fmt.Sprintf("%s (%s)", h.VehicleNumber, h.VehicleType))
	keyValue(pdf, "Period", period(b.Month, b.Year))
	keyValue(pdf, "Date", b.GeneratedAt.Format("02 Jan 2006"))
	pdf.Ln(4)

	lines := []line{
		{"Base amount", fmt.Sprintf("%d days, %d km", c.BaseDays, c.BaseKms), Rupees(c.BaseAmount)},
		{"Extra days", fmt.Sprintf("%d x %s", c.ExtraDays, Rupees(c.ExtraDayRate)), Rupees(c.ExtraDaysAmount)},
		{"Extra km", fmt.Sprintf("%d of %d km x %s", c.ExtraKms, c.TotalKms, Rupees(c.ExtraKmRate)), Rupees(c.ExtraKmsAmount)},
		{"Extra hours", fmt.Sprintf("%.1f h x %s", c.TotalExtraHours, Rupees(c.ExtraHourRate)), Rupees(c.ExtraHoursAmount)},
		{"Sub total", "", Rupees(c.SubTotal)},
	}
	if c.Adjustments != 0 {
		lines = append(lines, line{"Adjustments", b.AdjustmentNotes, Rupees(c.Adjustments)})
	}
	table(pdf, lines)
	total(pdf, "Total", Rupees(c.TotalAmount))
	words(pdf, amountwords.Rupees(c.TotalAmount))
	return output(pdf)
}

// SlipFilename is the download name for a salary slip.
func SlipFilename(driverName string, month, year int) string {
	return fmt.Sprintf("salary_%s_%04d_%02d.pdf", filenamePart(driverName), year, month)
}

func InvoiceFilename(billNumber string) string {
	return filenamePart(billNumber) + ".pdf"
}

func newDocument(company, title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetCreator(company, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, company, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.Ln(6)
	return pdf
}

func keyValue(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(35, 7, key, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

func table(pdf *gofpdf.Fpdf, lines []line) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(50, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(90, 8, "Detail", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		pdf.CellFormat(50, 8, l.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 8, l.detail, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, l.amount, "1", 1, "R", false, 0, "")
	}
}

func total(pdf *gofpdf.Fpdf, label, amount string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 9, label, "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, amount, "1", 1, "R", false, 0, "")
}

func words(pdf *gofpdf.Fpdf, inWords string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 11)
	pdf.MultiCell(0, 6, "Rupees "+inWords+" Only", "", "", false)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
