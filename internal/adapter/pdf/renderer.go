// Package pdf renders submission records as A4 PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

const (
	pageMargin = 15.0
	labelWidth = 60.0
	lineHeight = 6.0
)

// Renderer produces PDF records with go-pdf/fpdf.
type Renderer struct {
	siteName string
	loc      *time.Location
	log      *slog.Logger
}

// NewRenderer creates a Renderer. Timestamps are printed in Europe/London
// when the zone database is available and in UTC otherwise.
func NewRenderer(siteName string, logger *slog.Logger) *Renderer {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	return &Renderer{
		siteName: siteName,
		loc:      loc,
		log:      logger.With("adapter", "pdf"),
	}
}

// Render lays out the document's fields as a two-column table and returns
// the encoded PDF.
func (r *Renderer) Render(ctx context.Context, doc domain.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc.Reference == "" {
		return nil, fmt.Errorf("pdf: render: empty reference")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	title := domain.FormTitle(doc.FormType) + " Form"

	pdf.SetTitle(title+" "+doc.Reference, true)
	pdf.SetAuthor(r.siteName, true)
	pdf.SetCreationDate(doc.SubmittedAt)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s  |  %s  |  Page %d", r.siteName, doc.Reference, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(34, 85, 51)
	pdf.CellFormat(0, 10, tr(r.siteName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, "Reference: "+doc.Reference, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Submitted: "+doc.SubmittedAt.In(r.loc).Format("2 January 2006 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	width, _ := pdf.GetPageSize()
	valueWidth := width - 2*pageMargin - labelWidth

	for i, f := range doc.Fields {
		value := f.Value
		if value == "" {
			value = "-"
		}
		fill := i%2 == 0
		pdf.SetFillColor(240, 246, 242)

		x, y := pdf.GetXY()
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(labelWidth, lineHeight, tr(f.Label), "", "L", fill)
		labelBottom := pdf.GetY()

		pdf.SetXY(x+labelWidth, y)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(valueWidth, lineHeight, tr(value), "", "L", fill)
		if valueBottom := pdf.GetY(); labelBottom > valueBottom {
			pdf.SetY(labelBottom)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.log.ErrorContext(ctx, "render failed", slog.String("reference", doc.Reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("pdf: render %s: %w", doc.Reference, err)
	}

	r.log.DebugContext(ctx, "rendered document",
		slog.String("reference", doc.Reference),
		slog.Int("bytes", buf.Len()),
		slog.Int("pages", pdf.PageCount()),
	)
	return buf.Bytes(), nil
}
