// Package citation renders issued challans and stores the documents.
package citation

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/config"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
)

const (
	DateLayout  = "2006-01-02 15:04:05"
	ContentType = "application/pdf"

	leftMargin = 72.0
	lineStep   = 18.0
	bulletGap  = 15.0
)

// PDFFormatter lays a citation out on a single A4 page.
type PDFFormatter struct {
	title      string
	currency   string
	disclaimer string
	compress   bool
}

func NewPDFFormatter(cfg config.DocumentConfig) *PDFFormatter {
	return &PDFFormatter{
		title:      cfg.Title,
		currency:   cfg.Currency,
		disclaimer: cfg.Disclaimer,
		compress:   true,
	}
}

// WithoutCompression leaves page streams uncompressed so the text is
// readable in the raw file.
func (f *PDFFormatter) WithoutCompression() *PDFFormatter {
	clone := *f
	clone.compress = false
	return &clone
}

func (f *PDFFormatter) Render(c models.Citation) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(f.compress)
	pdf.SetCreationDate(c.GeneratedAt)
	pdf.SetModificationDate(c.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(f.title+" "+c.ID, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()

	y := 72.0
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(leftMargin, y, tr(f.title))

	y += 36
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(leftMargin, y, tr("Challan ID: "+c.ID))
	date := "Date: " + c.GeneratedAt.Format(DateLayout)
	pdf.Text(pageWidth-leftMargin-pdf.GetStringWidth(date), y, date)

	y += 36
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(leftMargin, y, tr("Vehicle Number: "+c.PlateText))

	y += 30
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(leftMargin, y, "Violations Detected:")

	pdf.SetFont("Helvetica", "", 12)
	for _, name := range violation.DisplayNames(c.Violations) {
		y += lineStep
		pdf.Text(leftMargin+bulletGap, y, tr("- "+name))
	}

	y += 30
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(200, 0, 0)
	pdf.Text(leftMargin, y, tr(fmt.Sprintf("Total Fine Amount: %s %d", f.currency, c.TotalFine)))
	pdf.SetTextColor(0, 0, 0)

	y += 36
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Text(leftMargin, y, tr(f.disclaimer))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render challan %s: %w", c.ID, err)
	}
	return buf.Bytes(), nil
}
