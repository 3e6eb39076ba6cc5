package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/export"
	"github.com/odyssey-erp/backoffice/internal/exportlog"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/reports/svg"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const (
	requestTimeout = 20 * time.Second
	formatJSON     = "json"
)

// Filter is the query string accepted by report pages and exports.
type Filter struct {
	Start    string `validate:"omitempty,datetime=2006-01-02"`
	End      string `validate:"omitempty,datetime=2006-01-02"`
	Customer string `validate:"omitempty,max=64"`
	Format   string `validate:"omitempty,oneof=print csv pdf email xlsx print-pdf json"`
}

// EmailRequest is the body of an email delivery request.
type EmailRequest struct {
	To string `validate:"required,email"`
}

// Config wires the handler dependencies. Records, History, Metrics and
// Deliverer are optional.
type Config struct {
	Logger    *slog.Logger
	Service   *Service
	Records   backend.Records
	Templates *view.Engine
	Renderer  *export.Renderer
	History   *exportlog.Service
	Metrics   *observability.Metrics
	Deliverer export.Deliverer
}

// Handler serves report pages, exports, the dashboard and the records API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	records   backend.Records
	templates *view.Engine
	renderer  *export.Renderer
	history   *exportlog.Service
	metrics   *observability.Metrics
	deliverer export.Deliverer
	validate  *validator.Validate
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   cfg.Service,
		records:   cfg.Records,
		templates: cfg.Templates,
		renderer:  cfg.Renderer,
		history:   cfg.History,
		metrics:   cfg.Metrics,
		deliverer: cfg.Deliverer,
		validate:  validator.New(),
	}
}

func (h *Handler) parseFilter(r *http.Request) (Filter, export.DateRange, error) {
	q := r.URL.Query()
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			q = r.Form
		}
	}
	f := Filter{
		Start:    strings.TrimSpace(q.Get("start")),
		End:      strings.TrimSpace(q.Get("end")),
		Customer: strings.TrimSpace(q.Get("customer")),
		Format:   strings.ToLower(strings.TrimSpace(q.Get("format"))),
	}
	if err := h.validate.Struct(f); err != nil {
		return Filter{}, export.DateRange{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	rng, err := export.ParseDateRange(f.Start, f.End)
	if err != nil {
		return Filter{}, export.DateRange{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return f, rng, nil
}

func knownReport(kind string) bool {
	return kind == KindSales || kind == KindLedger || kind == KindProducts
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "report")
	if !knownReport(kind) {
		httpx.RespondError(w, fmt.Errorf("%w: %q", ErrUnknownReport, kind))
		return
	}
	f, rng, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	switch f.Format {
	case "":
		h.renderPage(ctx, w, r, kind, f, rng)
	case formatJSON:
		h.renderJSON(ctx, w, kind, f, rng)
	default:
		h.export(ctx, w, r, kind, export.Format(f.Format), f, rng)
	}
}

func (h *Handler) renderPage(ctx context.Context, w http.ResponseWriter, r *http.Request, kind string, f Filter, rng export.DateRange) {
	page := ReportPage{
		Kind:       kind,
		Title:      titleFor(kind),
		Path:       r.URL.Path,
		Start:      f.Start,
		End:        f.End,
		CustomerID: f.Customer,
		EmptyText:  emptyTextFor(kind),
	}
	var notice *shared.Notice

	if kind == KindLedger && f.Customer == "" {
		page.NeedsCustomer = true
		res := shared.Load(ctx, h.service.Customers)
		page.Customers = res.Data
		notice = h.noticeFor(kind, res.Err, res.Notice())
	} else {
		res := shared.Load(ctx, func(ctx context.Context) (Built, error) {
			return h.service.Build(ctx, kind, Query{Range: rng, CustomerID: f.Customer})
		})
		if res.OK() {
			page.Table = res.Data.Table
			page.Rows = res.Data.Rows
			page.Source = res.Data.Source
			page.Customer = res.Data.Customer
		}
		notice = h.noticeFor(kind, res.Err, res.Notice())
		if h.renderer != nil {
			page.Exports = exportLinks(r.URL.Path, f, h.renderer.Formats())
		}
	}
	if notice == nil && r.URL.Query().Get("sent") == "1" {
		notice = &shared.Notice{Kind: shared.NoticeSuccess, Message: "Report email queued for delivery."}
	}

	data := view.TemplateData{
		Title:       page.Title,
		Notice:      notice,
		CurrentPath: r.URL.Path,
		Data:        page,
	}
	if err := h.templates.Render(w, "pages/reports.html", data); err != nil {
		h.handleServerError(w, "render report page", err)
	}
}

func (h *Handler) noticeFor(kind string, err error, notice *shared.Notice) *shared.Notice {
	if err == nil {
		return nil
	}
	h.logger.Warn("load report", slog.String("report", kind), slog.Any("error", err))
	if errors.Is(err, ErrCustomerNotFound) {
		notice.Message = "Customer not found."
	}
	return notice
}

type tableResponse struct {
	Report  string               `json:"report"`
	Title   string               `json:"title"`
	Period  export.Period        `json:"period"`
	Headers []string             `json:"headers"`
	Rows    [][]string           `json:"rows"`
	Summary []export.SummaryItem `json:"summary"`
	Showing int                  `json:"showing"`
	Total   int                  `json:"total"`
}

func (h *Handler) renderJSON(ctx context.Context, w http.ResponseWriter, kind string, f Filter, rng export.DateRange) {
	built, err := h.service.Build(ctx, kind, Query{Range: rng, CustomerID: f.Customer})
	if err != nil {
		h.respondError(w, "build report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tableResponse{
		Report:  kind,
		Title:   built.Table.Title,
		Period:  built.Table.Period,
		Headers: built.Table.Headers,
		Rows:    built.Table.Rows,
		Summary: built.Table.Summary,
		Showing: built.Rows,
		Total:   built.Source,
	})
}

func (h *Handler) export(ctx context.Context, w http.ResponseWriter, r *http.Request, kind string, format export.Format, f Filter, rng export.DateRange) {
	if h.renderer == nil || !h.renderer.Supports(format) {
		httpx.RespondError(w, fmt.Errorf("%w: %q", httpx.ErrUnsupported, format))
		return
	}
	built, err := h.service.Build(ctx, kind, Query{Range: rng, CustomerID: f.Customer, Format: format})
	if err != nil {
		h.respondError(w, "build report", err)
		return
	}
	err = h.renderer.Render(ctx, format, export.NewHTTPTarget(w, r), built.Table)
	h.record(ctx, kind, string(format), export.FileName(built.Table.Title, built.Table.Period, fileExt(format)), built, err)
	if err != nil {
		h.respondError(w, "export report", err)
	}
}

func fileExt(format export.Format) string {
	switch format {
	case export.FormatPrint:
		return "html"
	case export.FormatEmail:
		return "txt"
	case export.FormatPrintPDF:
		return "pdf"
	}
	return string(format)
}

func (h *Handler) record(ctx context.Context, kind, format, filename string, built Built, err error) {
	h.metrics.ObserveExport(kind, format, built.Rows, err)
	if h.history == nil {
		return
	}
	entry := exportlog.Entry{
		Report:      kind,
		Format:      format,
		Filename:    filename,
		RowCount:    built.Rows,
		PeriodStart: built.Table.Period.Start,
		PeriodEnd:   built.Table.Period.End,
	}
	if err != nil {
		entry.Status = exportlog.StatusFailed
	}
	h.history.Record(context.WithoutCancel(ctx), entry)
}

func (h *Handler) handleEmailSend(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "report")
	if !knownReport(kind) {
		httpx.RespondError(w, fmt.Errorf("%w: %q", ErrUnknownReport, kind))
		return
	}
	if h.deliverer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Email Unavailable", "email delivery is not configured")
		return
	}
	f, rng, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	req := EmailRequest{To: strings.TrimSpace(r.FormValue("to"))}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	built, err := h.service.Build(ctx, kind, Query{Range: rng, CustomerID: f.Customer, Format: export.FormatEmail})
	if err != nil {
		h.respondError(w, "build report", err)
		return
	}
	email := h.service.Email(built)
	err = h.deliverer.Deliver(ctx, req.To, email)
	h.record(ctx, kind, "smtp", "", built, err)
	if err != nil {
		h.respondError(w, "queue report email", err)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued", "to": req.To, "subject": email.Subject})
		return
	}
	q := f.values()
	q.Set("sent", "1")
	http.Redirect(w, r, "/reports/"+kind+"?"+q.Encode(), http.StatusSeeOther)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.RespondError(w, fmt.Errorf("%w: limit must be a positive integer", httpx.ErrValidation))
			return
		}
		limit = n
	}
	if h.history == nil {
		httpx.JSON(w, http.StatusOK, []exportlog.Entry{})
		return
	}
	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.handleServerError(w, "list export history", err)
		return
	}
	if entries == nil {
		entries = []exportlog.Entry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := shared.Load(ctx, h.service.Dashboard)
	if r.URL.Query().Get("format") == formatJSON || httpx.WantsJSON(r) {
		if !res.OK() {
			h.respondError(w, "load dashboard", res.Err)
			return
		}
		httpx.JSON(w, http.StatusOK, res.Data)
		return
	}

	page := DashboardPage{Dashboard: res.Data}
	if res.OK() {
		if err := h.charts(&page); err != nil {
			h.handleServerError(w, "render charts", err)
			return
		}
	} else {
		h.logger.Warn("load dashboard", slog.Any("error", res.Err))
	}
	data := view.TemplateData{
		Title:       "Dashboard",
		Notice:      res.Notice(),
		CurrentPath: r.URL.Path,
		Data:        page,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.handleServerError(w, "render dashboard", err)
	}
}

func (h *Handler) charts(page *DashboardPage) error {
	if labels, values := page.Dashboard.MonthlySeries(); len(values) > 0 {
		chart, err := svg.Bars(labels, values, svg.Opts{
			Title:       "Monthly Purchase Totals",
			Description: "Total Purchases ($) per month",
			Color:       "#4bc0c0",
		})
		if err != nil {
			return err
		}
		page.MonthlyChart = chart
		labels, values = page.Dashboard.CumulativeSeries()
		trend, err := svg.Line(labels, values, svg.Opts{
			Title:       "Cumulative Revenue",
			Description: "Running purchase total",
		})
		if err != nil {
			return err
		}
		page.TrendChart = trend
	}
	if labels, values := page.Dashboard.StockSeries(); len(values) > 0 {
		chart, err := svg.Bars(labels, values, svg.Opts{
			Title:       "Product Quantity Distribution",
			Description: "Units on hand per product",
			Color:       "#9966ff",
		})
		if err != nil {
			return err
		}
		page.StockChart = chart
	}
	return nil
}

// respondError logs unexpected failures and maps the error to a problem response.
func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, httpx.ErrValidation), errors.Is(err, httpx.ErrNotFound), errors.Is(err, httpx.ErrUnsupported):
		h.logger.Info(action, slog.Any("error", err))
	default:
		h.logger.Error(action, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
