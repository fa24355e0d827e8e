package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/export"
	"github.com/MrJamesThe3rd/spendly/internal/http/respond"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/pdf", h.pdf)
	r.Post("/download", h.download)
}

type exportRequest struct {
	Title     string  `json:"title,omitempty"`
	Category  *string `json:"category,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

type rowResponse struct {
	ID           uuid.UUID       `json:"id"`
	OccurredOn   time.Time       `json:"occurred_on"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	RunningTotal decimal.Decimal `json:"running_total"`
}

type exportMetadataResponse struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	Rows        []rowResponse   `json:"rows"`
	Summary     string          `json:"summary"`
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) (*export.Report, bool) {
	userID, err := identity.UserID(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	var req exportRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.BadRequest(w, err.Error())
			return nil, false
		}
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		respond.BadRequest(w, "invalid start_date")
		return nil, false
	}

	end, err := parseDate(req.EndDate)
	if err != nil {
		respond.BadRequest(w, "invalid end_date")
		return nil, false
	}

	report, err := h.svc.Report(r.Context(), userID, export.Request{
		Title:     req.Title,
		Category:  req.Category,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return report, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}

	rows := make([]rowResponse, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, rowResponse{
			ID:           row.Expense.ID,
			OccurredOn:   row.Expense.OccurredOn,
			Description:  row.Expense.Description,
			Category:     row.Expense.CategoryLabel(),
			Amount:       row.Expense.Amount,
			RunningTotal: row.RunningTotal,
		})
	}

	respond.JSON(w, http.StatusOK, exportMetadataResponse{
		Title:       report.Title,
		GeneratedAt: report.GeneratedAt,
		Count:       len(rows),
		Total:       report.Total,
		Rows:        rows,
		Summary:     h.svc.Summary(report),
	})
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}

	// Rendered into memory first so a failure can still be reported with a status code.
	var buf bytes.Buffer
	if err := h.svc.WritePDF(&buf, report); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.svc.Filename(report, ".pdf")))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write pdf", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}

	var pdf, csv bytes.Buffer

	if err := h.svc.WritePDF(&pdf, report); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.WriteCSV(&csv, report); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.svc.Filename(report, ".zip")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	files := []struct {
		name string
		data []byte
	}{
		{h.svc.Filename(report, ".pdf"), pdf.Bytes()},
		{h.svc.Filename(report, ".csv"), csv.Bytes()},
		{"summary.txt", []byte(h.svc.Summary(report))},
	}

	for _, f := range files {
		zf, err := zipWriter.Create(f.name)
		if err != nil {
			slog.Error("failed to create zip", "error", err)
			return
		}

		if _, err := zf.Write(f.data); err != nil {
			slog.Error("failed to create zip", "error", err)
			return
		}
	}
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}

	t, err := time.ParseInLocation(time.DateOnly, *s, time.Local)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
