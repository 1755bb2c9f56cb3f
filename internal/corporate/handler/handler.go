package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"equityshield/internal/corporate/models"
	"equityshield/pkg/platform/httputil"
	"equityshield/pkg/requestcontext"
)

// Service defines the read operations the corporate endpoints need.
type Service interface {
	Structure(ctx context.Context) (*models.CorporateStructure, error)
	CompaniesBySector(ctx context.Context, sector string, page *models.PageRequest) (models.Page[models.Company], error)
	CompanyByTicker(ctx context.Context, ticker string) (*models.CompanyMatch, error)
	ListAssets(ctx context.Context, q models.AssetQuery) (models.Page[models.AssetRecord], error)
}

// Handler wires corporate data endpoints to the query service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a corporate data handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the corporate data endpoints on r. The trailing-slash
// variants exist so an empty path segment answers 400 rather than 404.
func (h *Handler) Register(r chi.Router) {
	r.Get("/corporate-structure", h.HandleCorporateStructure)
	r.Get("/companies/", h.HandleCompaniesBySector)
	r.Get("/companies/{sector}", h.HandleCompaniesBySector)
	r.Get("/company/", h.HandleCompanyByTicker)
	r.Get("/company/{ticker}", h.HandleCompanyByTicker)
	r.Get("/real-assets", h.HandleRealAssets)
}

// HandleCorporateStructure handles GET /api/corporate-structure.
func (h *Handler) HandleCorporateStructure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cs, err := h.service.Structure(ctx)
	if err != nil {
		h.fail(ctx, w, "load corporate structure failed", err)
		return
	}
	httputil.WriteSuccess(w, cs)
}

// HandleCompaniesBySector handles GET /api/companies/{sector}.
func (h *Handler) HandleCompaniesBySector(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sector, err := httputil.URLParam(r, "sector")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	pageReq, err := models.ParsePage(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.CompaniesBySector(ctx, sector, &pageReq)
	if err != nil {
		h.fail(ctx, w, "list companies failed", err, "sector", sector)
		return
	}
	httputil.WritePage(w, page.Items, pagination(page))
}

// HandleCompanyByTicker handles GET /api/company/{ticker}.
func (h *Handler) HandleCompanyByTicker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker, err := httputil.URLParam(r, "ticker")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	match, err := h.service.CompanyByTicker(ctx, ticker)
	if err != nil {
		h.fail(ctx, w, "company lookup failed", err, "ticker", ticker)
		return
	}
	httputil.WriteSuccess(w, match)
}

// HandleRealAssets handles GET /api/real-assets.
func (h *Handler) HandleRealAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := models.ParseAssetQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.ListAssets(ctx, q)
	if err != nil {
		h.fail(ctx, w, "list assets failed", err)
		return
	}
	httputil.WritePage(w, page.Items, pagination(page))
}

// fail logs server faults at error level and client faults at debug, then
// writes the envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if httputil.IsServerFault(err) {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.DebugContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}

func pagination[T any](p models.Page[T]) httputil.Pagination {
	return httputil.Pagination{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}
