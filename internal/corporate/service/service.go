package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"equityshield/internal/corporate/models"
	dErrors "equityshield/pkg/domain-errors"
)

// SnapshotStore provides the immutable datasets the service queries.
type SnapshotStore interface {
	Structure(ctx context.Context) (*models.CorporateStructure, error)
	Metrics(ctx context.Context) (models.MetricsTable, error)
}

// Service answers sector, ticker and asset queries. It never mutates what
// the store returns.
type Service struct {
	store   SnapshotStore
	symbols []string
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTrackedSymbols sets the allow-list served by ListAssets, in order. An
// empty list keeps DefaultTrackedSymbols.
func WithTrackedSymbols(symbols []string) Option {
	return func(s *Service) {
		if len(symbols) > 0 {
			s.symbols = slices.Clone(symbols)
		}
	}
}

// DefaultTrackedSymbols is used when no allow-list is configured.
var DefaultTrackedSymbols = []string{"GOOG", "MSFT", "NVDA", "JPM", "BAC", "C", "PLD", "AMT", "SPG"}

func New(store SnapshotStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		symbols: slices.Clone(DefaultTrackedSymbols),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Structure(ctx context.Context) (*models.CorporateStructure, error) {
	return s.store.Structure(ctx)
}

// CompaniesBySector returns the companies of an exact sector name. A nil
// page returns the whole list.
func (s *Service) CompaniesBySector(ctx context.Context, sector string, page *models.PageRequest) (models.Page[models.Company], error) {
	if sector == "" {
		return models.Page[models.Company]{}, dErrors.New(dErrors.CodeInvalidArgument, "Sector parameter is required")
	}
	cs, err := s.store.Structure(ctx)
	if err != nil {
		return models.Page[models.Company]{}, err
	}
	companies, ok := cs.Sector(sector)
	if !ok {
		return models.Page[models.Company]{}, dErrors.Newf(dErrors.CodeNotFound, "Sector '%s' not found", sector)
	}

	if page == nil {
		return models.Page[models.Company]{Items: slices.Clone(companies), Total: len(companies)}, nil
	}
	return models.Paginate(companies, *page), nil
}

// CompanyByTicker scans sectors in document order and returns the first
// company whose ticker matches case-insensitively.
func (s *Service) CompanyByTicker(ctx context.Context, ticker string) (*models.CompanyMatch, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "Ticker parameter is required")
	}
	cs, err := s.store.Structure(ctx)
	if err != nil {
		return nil, err
	}
	for _, sector := range cs.Sectors {
		for _, c := range sector.Companies {
			if strings.EqualFold(c.Ticker, ticker) {
				return &models.CompanyMatch{Company: c, Sector: sector.Name}, nil
			}
		}
	}
	return nil, dErrors.Newf(dErrors.CodeNotFound, "Company with ticker '%s' not found", ticker)
}

// ListAssets builds records for tracked symbols present in the metrics
// table, then filters, sorts and paginates them in that order.
func (s *Service) ListAssets(ctx context.Context, q models.AssetQuery) (models.Page[models.AssetRecord], error) {
	table, err := s.store.Metrics(ctx)
	if err != nil {
		return models.Page[models.AssetRecord]{}, err
	}

	records := make([]models.AssetRecord, 0, len(s.symbols))
	for _, sym := range s.symbols {
		row, ok := table[sym]
		if !ok {
			continue
		}
		rec := models.AssetRecord{
			Symbol:      sym,
			MarketCap:   row.MarketCap,
			Revenue:     row.Revenue,
			LastUpdated: row.LastUpdated,
		}
		if !inRange(rec.MarketCap, q.MinMarketCap, q.MaxMarketCap) {
			continue
		}
		records = append(records, rec)
	}

	sortAssets(records, q.SortBy, q.SortOrder)

	page := q.Page
	if page.Page == 0 && page.PerPage == 0 {
		page = models.DefaultPageRequest()
	}
	return models.Paginate(records, page), nil
}

// inRange excludes null values whenever a bound is set.
func inRange(v, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	if v == nil {
		return false
	}
	if lo != nil && *v < *lo {
		return false
	}
	if hi != nil && *v > *hi {
		return false
	}
	return true
}

// sortAssets is stable, so equal keys keep allow-list order. Null values sort
// after every non-null value in both directions.
func sortAssets(records []models.AssetRecord, by models.SortKey, order models.SortOrder) {
	desc := order == models.SortDesc
	slices.SortStableFunc(records, func(a, b models.AssetRecord) int {
		if by == models.SortBySymbol || by == "" {
			c := cmp.Compare(a.Symbol, b.Symbol)
			if desc {
				return -c
			}
			return c
		}

		av, bv := a.MarketCap, b.MarketCap
		if by == models.SortByRevenue {
			av, bv = a.Revenue, b.Revenue
		}
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}
		c := cmp.Compare(*av, *bv)
		if desc {
			return -c
		}
		return c
	})
}
