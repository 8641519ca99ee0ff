package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/internal/clock"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	"github.com/smallbiznis/collecta/internal/orgcontext"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const upcomingDueWindowDays = 7

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  invoicedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  invoicedomain.Repository
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidOrganization
	}

	filter := invoicedomain.ListFilter{
		OrgID:      orgID,
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
		Status:     req.Status,
	}

	items, total, err := s.repo.List(ctx, s.db, filter, req.Offset(), req.Limit())
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	return invoicedomain.ListInvoiceResponse{
		PageInfo: pagination.BuildPageInfo(req.Pagination, total),
		Invoices: items,
	}, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (invoicedomain.InvoiceDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return invoicedomain.InvoiceDetail{}, invoicedomain.ErrInvalidOrganization
	}

	invoice, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return invoicedomain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return invoicedomain.InvoiceDetail{}, invoicedomain.ErrNotFound
	}

	allocations, err := s.repo.ListAllocations(ctx, s.db, orgID, id)
	if err != nil {
		return invoicedomain.InvoiceDetail{}, err
	}

	return invoicedomain.InvoiceDetail{
		Invoice:     *invoice,
		Allocations: allocations,
	}, nil
}

// Summary computes aging buckets over the org's open receivables. Buckets
// follow the collections convention: anything not yet due is "current",
// overdue balance splits at 30/60/90 days past the due date.
func (s *Service) Summary(ctx context.Context, req invoicedomain.SummaryRequest) (invoicedomain.SummaryResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return invoicedomain.SummaryResponse{}, invoicedomain.ErrInvalidOrganization
	}

	invoices, err := s.repo.ListOpen(ctx, s.db, orgID, req.CustomerID)
	if err != nil {
		return invoicedomain.SummaryResponse{}, err
	}

	now := s.clock.Now()
	horizon := now.AddDate(0, 0, upcomingDueWindowDays)

	var resp invoicedomain.SummaryResponse
	for _, invoice := range invoices {
		resp.TotalBalance += invoice.Balance

		// A due date still in the future is current, even when it is less
		// than a day away. Only invoices at or past their due date age.
		if invoice.DueDate.After(now) {
			resp.Aging.Current += invoice.Balance
		} else {
			resp.OverdueBalance += invoice.Balance
			overdueDays := int(now.Sub(invoice.DueDate).Hours() / 24)
			switch {
			case overdueDays <= 30:
				resp.Aging.Days0To30 += invoice.Balance
			case overdueDays <= 60:
				resp.Aging.Days31To60 += invoice.Balance
			case overdueDays <= 90:
				resp.Aging.Days61To90 += invoice.Balance
			default:
				resp.Aging.Days90Plus += invoice.Balance
			}
		}

		if !invoice.DueDate.Before(now) && !invoice.DueDate.After(horizon) {
			resp.UpcomingDue.Amount += invoice.Balance
			resp.UpcomingDue.Count++
		}
	}

	return resp, nil
}
