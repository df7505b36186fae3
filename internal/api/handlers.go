package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"routecast/internal/types"

	"github.com/go-chi/chi/v5"
)

// ReportGenerator is the service contract this handler depends on, defined
// locally so tests can substitute a fake without touching the real pipeline.
type ReportGenerator interface {
	Generate(ctx context.Context, stageName string, rtype types.ReportType, targetDate time.Time) (string, string, error)
}

// ReportHandler maps HTTP requests to report generation.
type ReportHandler struct {
	generator ReportGenerator
	loc       *time.Location
	logger    *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(gen ReportGenerator, loc *time.Location, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{generator: gen, loc: loc, logger: logger}
}

// RegisterRoutes mounts the report endpoints onto the router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/report", h.HandleGetReport)
}

// reportResponse is the payload of a successful report request.
type reportResponse struct {
	Type      string `json:"type"`
	Date      string `json:"date"`
	Stage     string `json:"stage,omitempty"`
	ShortText string `json:"short_text"`
	DebugText string `json:"debug_text,omitempty"`
}

// HandleGetReport handles GET /v1/report.
//
// Query parameters: type (morning|evening|dynamic, default morning), date
// (YYYY-MM-DD, default today), stage (optional stage name override), and
// debug=1 to include the debug transcript in the response.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rtype := types.ReportType(q.Get("type"))
	if rtype == "" {
		rtype = types.ReportMorning
	}
	if !rtype.Valid() {
		Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidReportType,
			"type must be morning, evening, or dynamic", nil))
		return
	}

	date := time.Now().In(h.loc)
	if dateStr := q.Get("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, h.loc)
		if err != nil {
			Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidDate,
				"date must be in YYYY-MM-DD form", nil))
			return
		}
		date = parsed
	}

	shortText, debugText, err := h.generator.Generate(r.Context(), q.Get("stage"), rtype, date)
	if err != nil {
		types.GetLogger(r.Context()).Warn("report generation failed",
			slog.String("type", string(rtype)),
			slog.String("stage", q.Get("stage")),
			slog.String("error", err.Error()))
		Error(w, r, err)
		return
	}

	h.logger.Debug("report generated",
		slog.String("type", string(rtype)),
		slog.Int("short_len", len(shortText)))

	resp := reportResponse{
		Type:      string(rtype),
		Date:      date.Format("2006-01-02"),
		Stage:     q.Get("stage"),
		ShortText: shortText,
	}
	if q.Get("debug") == "1" {
		resp.DebugText = debugText
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: resp})
}
