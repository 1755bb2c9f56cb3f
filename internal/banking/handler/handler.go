package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"equityshield/internal/banking/models"
	dErrors "equityshield/pkg/domain-errors"
	"equityshield/pkg/platform/httputil"
	"equityshield/pkg/requestcontext"
)

// Service defines the mock banking operations.
type Service interface {
	BankingInfo() models.BankingInfo
	Account(ctx context.Context, bankID string) (*models.BankAccount, error)
	ValidateRouting(value any) bool
	InitiateTransfer(ctx context.Context, req models.TransferRequest) (*models.TransferResult, error)
}

// Handler wires the banking endpoints to the registry.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the banking endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/banking-info", h.HandleBankingInfo)
	r.Get("/banks/{bankId}/account", h.HandleAccount)
	r.Post("/banks/validate-routing", h.HandleValidateRouting)
	r.Post("/banks/transfer", h.HandleTransfer)
}

// HandleBankingInfo handles GET /api/banking-info.
func (h *Handler) HandleBankingInfo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, h.service.BankingInfo())
}

// HandleAccount handles GET /api/banks/{bankId}/account.
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bankID, err := httputil.URLParam(r, "bankId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	acct, err := h.service.Account(ctx, bankID)
	if err != nil {
		h.logger.WarnContext(ctx, "bank account lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"bank_id", bankID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, acct)
}

// HandleValidateRouting handles POST /api/banks/validate-routing.
func (h *Handler) HandleValidateRouting(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[models.ValidateRoutingRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	value, ok := req.Value()
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidArgument, "Missing routing_number parameter"))
		return
	}
	httputil.WriteSuccess(w, models.ValidateRoutingResponse{
		RoutingNumber: req.RoutingNumber,
		Valid:         h.service.ValidateRouting(value),
	})
}

// HandleTransfer handles POST /api/banks/transfer.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[models.TransferRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.InitiateTransfer(ctx, *req)
	if err != nil {
		level := slog.LevelWarn
		if httputil.IsServerFault(err) {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "transfer failed",
			"request_id", requestcontext.RequestID(ctx),
			"from_bank", req.FromBank,
			"to_bank", req.ToBank,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}
