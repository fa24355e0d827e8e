package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/expense"
	"github.com/MrJamesThe3rd/spendly/internal/money"
)

// DefaultTitle is used when a request does not name its report.
const DefaultTitle = "Expense Report"

// Request selects the expenses that go into a report.
type Request struct {
	Title     string
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Row is one exported expense with the total of every row up to and including it.
type Row struct {
	Expense      *expense.Expense
	RunningTotal decimal.Decimal
}

type Report struct {
	Title       string
	GeneratedAt time.Time
	Category    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Rows        []Row
	Total       decimal.Decimal
}

// Service renders expense reports.
type Service struct {
	expenses *expense.Service
	money    *money.Formatter
	now      func() time.Time
}

// NewService creates a new export Service.
func NewService(expenses *expense.Service, formatter *money.Formatter) *Service {
	return &Service{
		expenses: expenses,
		money:    formatter,
		now:      time.Now,
	}
}

// Report lists the matching expenses, newest first, and accumulates running totals in that order.
func (s *Service) Report(ctx context.Context, userID string, req Request) (*Report, error) {
	expenses, err := s.expenses.List(ctx, userID, expense.ListFilter{
		Category:  req.Category,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		SortBy:    expense.SortByDate,
	})
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}

	report := &Report{
		Title:       title,
		GeneratedAt: s.now(),
		Category:    req.Category,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Rows:        make([]Row, 0, len(expenses)),
		Total:       decimal.Zero,
	}

	for _, e := range expenses {
		report.Total = report.Total.Add(e.Amount)
		report.Rows = append(report.Rows, Row{Expense: e, RunningTotal: report.Total})
	}

	return report, nil
}

// Column widths in mm, filling the printable width of an A4 page.
var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 25, "L"},
	{"Description", 68, "L"},
	{"Category", 35, "L"},
	{"Amount", 30, "R"},
	{"Running total", 32, "R"},
}

// WritePDF renders the report as an A4 document with a page counter in the footer.
func (s *Service) WritePDF(w io.Writer, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(r.Title, true)
	pdf.AliasNbPages("")
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}

		s.pdfHeaderRow(pdf)
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on: "+r.GeneratedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")

	if line := periodLine(r); line != "" {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	s.pdfHeaderRow(pdf)

	pdf.SetFont("Helvetica", "", 9)

	for _, row := range r.Rows {
		e := row.Expense
		cells := []string{
			e.OccurredOn.Format("02 Jan 2006"),
			truncate(e.Description, 38),
			truncate(e.CategoryLabel(), 18),
			s.money.Format(e.Amount),
			s.money.Format(row.RunningTotal),
		}

		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, tr(cells[i]), "B", 0, c.align, false, 0, "")
		}

		pdf.Ln(-1)
	}

	if len(r.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No expenses in this period.", "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, tr("Total: "+s.money.Format(r.Total)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}

	return nil
}

func (s *Service) pdfHeaderRow(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(243, 244, 246)

	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 7, c.title, "B", 0, c.align, true, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

// WriteCSV renders the report rows. Amounts are plain decimals so spreadsheets can sum them.
func (s *Service) WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "description", "category", "amount", "running_total"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range r.Rows {
		e := row.Expense
		if err := cw.Write([]string{
			e.OccurredOn.Format("2006-01-02"),
			e.Description,
			e.CategoryLabel(),
			e.Amount.StringFixed(2),
			row.RunningTotal.StringFixed(2),
		}); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// Summary renders one line per expense, followed by the total.
func (s *Service) Summary(r *Report) string {
	var sb strings.Builder

	for _, row := range r.Rows {
		e := row.Expense
		fmt.Fprintf(&sb, "* %s | %s | %s\n", e.OccurredOn.Format("2006-01-02"), e.Description, s.money.Format(e.Amount))
	}

	fmt.Fprintf(&sb, "Total: %s\n", s.money.Format(r.Total))

	return sb.String()
}

// Filename builds a download name like expense_report_20241016.pdf.
func (s *Service) Filename(r *Report, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, r.Title)

	return fmt.Sprintf("%s_%s%s", safe, r.GeneratedAt.Format("20060102"), ext)
}

func periodLine(r *Report) string {
	var parts []string

	switch {
	case r.StartDate != nil && r.EndDate != nil:
		parts = append(parts, fmt.Sprintf("Period: %s to %s", r.StartDate.Format("02 Jan 2006"), r.EndDate.Format("02 Jan 2006")))
	case r.StartDate != nil:
		parts = append(parts, "From: "+r.StartDate.Format("02 Jan 2006"))
	case r.EndDate != nil:
		parts = append(parts, "Until: "+r.EndDate.Format("02 Jan 2006"))
	}

	if r.Category != nil {
		label := *r.Category
		if label == "" {
			label = expense.Uncategorized
		}

		parts = append(parts, "Category: "+label)
	}

	return strings.Join(parts, "  |  ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n-1]) + "…"
}
