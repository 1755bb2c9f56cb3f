package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"equityshield/internal/banking/models"
	"equityshield/internal/platform/metrics"
	dErrors "equityshield/pkg/domain-errors"
	"equityshield/pkg/platform/audit"
	"equityshield/pkg/requestcontext"
)

// Directory is the fixed account lookup the registry reads.
type Directory interface {
	Get(bankID string) (models.BankAccount, bool)
}

// Registry simulates inter-bank account lookups and transfers. Nothing it
// does outlives the process.
type Registry struct {
	directory Directory
	info      models.BankingInfo
	logger    *slog.Logger
	auditor   audit.Emitter
	metrics   *metrics.Metrics
	newID     func() string
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithAuditor sets the compliance emitter for transfers. An emit failure
// fails the transfer.
func WithAuditor(a audit.Emitter) Option {
	return func(r *Registry) {
		r.auditor = a
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithIDGenerator replaces the transfer id source, for tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		r.newID = fn
	}
}

func New(directory Directory, info models.BankingInfo, opts ...Option) *Registry {
	r := &Registry{
		directory: directory,
		info:      info,
		logger:    slog.Default(),
		newID:     func() string { return models.TransferIDPrefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) BankingInfo() models.BankingInfo {
	return r.info
}

// Account is an exact, case-sensitive lookup.
func (r *Registry) Account(_ context.Context, bankID string) (*models.BankAccount, error) {
	acct, ok := r.directory.Get(bankID)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "No account info found for bank '%s'", bankID)
	}
	return &acct, nil
}

// ValidateRouting accepts any decoded JSON value. Only strings of nine ASCII
// digits are valid.
func (r *Registry) ValidateRouting(value any) bool {
	s, ok := value.(string)
	return ok && models.IsRoutingNumber(s)
}

// InitiateTransfer simulates a transfer. Bank ids are not checked against the
// directory and a valid request always reports success.
func (r *Registry) InitiateTransfer(ctx context.Context, req models.TransferRequest) (*models.TransferResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &models.TransferResult{
		TransferID: r.newID(),
		Status:     models.TransferStatusSuccess,
		FromBank:   req.FromBank,
		ToBank:     req.ToBank,
		Amount:     models.Amount{Decimal: *req.Amount},
		Currency:   req.Currency,
	}

	if r.auditor != nil {
		event := audit.NewEvent(audit.EventTransferInitiated, requestcontext.Now(ctx))
		event.Subject = result.TransferID
		event.ClientIP = requestcontext.ClientIP(ctx)
		event.RequestID = requestcontext.RequestID(ctx)
		event.Detail = map[string]string{
			"from_bank": result.FromBank,
			"to_bank":   result.ToBank,
			"amount":    result.Amount.String(),
			"currency":  result.Currency,
		}
		if err := r.auditor.Emit(ctx, event); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transfer")
		}
	}

	r.metrics.IncrementTransfers(result.Currency)
	r.logger.InfoContext(ctx, "transfer initiated",
		"request_id", requestcontext.RequestID(ctx),
		"transfer_id", result.TransferID,
		"from_bank", result.FromBank,
		"to_bank", result.ToBank,
		"amount", result.Amount.String(),
		"currency", result.Currency,
	)
	return result, nil
}
