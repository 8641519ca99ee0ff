package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/collecta/internal/audit/domain"
	"github.com/smallbiznis/collecta/internal/clock"
	"github.com/smallbiznis/collecta/internal/metrics"
	"github.com/smallbiznis/collecta/internal/orgcontext"
	paymentdomain "github.com/smallbiznis/collecta/internal/payment/domain"
	"github.com/smallbiznis/collecta/pkg/db"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    paymentdomain.Repository
	Audit   auditdomain.Service
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    paymentdomain.Repository
	audit   auditdomain.Service
	metrics *metrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("payment.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
}

// Create records a cash receipt. The bank reference is unique across the
// whole table, so re-importing the same statement line fails with
// ErrDuplicateBankRef instead of producing a second receipt.
func (s *Service) Create(ctx context.Context, req paymentdomain.CreatePaymentRequest) (*paymentdomain.Payment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, paymentdomain.ErrInvalidOrganization
	}
	if req.CustomerID == 0 {
		return nil, paymentdomain.ErrInvalidCustomer
	}
	if req.Amount <= 0 {
		return nil, paymentdomain.ErrInvalidAmount
	}
	if strings.TrimSpace(req.BankRef) == "" {
		return nil, paymentdomain.ErrInvalidBankRef
	}
	if !paymentdomain.ValidMethod(req.PaymentMethod) {
		return nil, paymentdomain.ErrInvalidMethod
	}
	if req.CreatedBy == 0 {
		return nil, paymentdomain.ErrInvalidCreator
	}

	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return nil, paymentdomain.ErrInvalidPaymentDate
	}

	now := s.clock.Now()
	payment := &paymentdomain.Payment{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		CustomerID:      req.CustomerID,
		PaymentNo:       s.generatePaymentNo(now),
		BankRef:         strings.TrimSpace(req.BankRef),
		Amount:          req.Amount,
		UnappliedAmount: req.Amount,
		PaymentDate:     paymentDate.UTC(),
		PaymentMethod:   req.PaymentMethod,
		Status:          paymentdomain.PaymentStatusUnapplied,
		CreatedBy:       req.CreatedBy,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.ReceiptURL != "" {
		payment.ReceiptURL = &req.ReceiptURL
	}
	if req.Remark != "" {
		payment.Remark = &req.Remark
	}

	if err := s.repo.Insert(ctx, s.db, payment); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, paymentdomain.ErrDuplicateBankRef
		}
		s.log.Error("failed to insert payment",
			zap.String("bank_ref", payment.BankRef),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordPayment()
	actor := req.CreatedBy
	if err := s.audit.Record(ctx, auditdomain.Entry{
		OrgID:        orgID,
		ActorID:      &actor,
		Action:       auditdomain.ActionCreate,
		ResourceType: auditdomain.ResourcePayment,
		ResourceID:   payment.ID.String(),
		NewValue:     payment,
	}); err != nil {
		s.log.Warn("failed to record payment audit log",
			zap.Int64("payment_id", payment.ID.Int64()),
			zap.Error(err),
		)
	}

	return payment, nil
}

func (s *Service) List(ctx context.Context, req paymentdomain.ListPaymentsRequest) (paymentdomain.ListPaymentsResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return paymentdomain.ListPaymentsResponse{}, paymentdomain.ErrInvalidOrganization
	}

	filter := paymentdomain.ListFilter{
		OrgID:      orgID,
		CustomerID: req.CustomerID,
		Status:     req.Status,
		Method:     req.Method,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	}

	items, total, err := s.repo.List(ctx, s.db, filter, req.Offset(), req.Limit())
	if err != nil {
		return paymentdomain.ListPaymentsResponse{}, err
	}

	return paymentdomain.ListPaymentsResponse{
		PageInfo: pagination.BuildPageInfo(req.Pagination, total),
		Payments: items,
	}, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (paymentdomain.PaymentDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return paymentdomain.PaymentDetail{}, paymentdomain.ErrInvalidOrganization
	}

	payment, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return paymentdomain.PaymentDetail{}, err
	}
	if payment == nil {
		return paymentdomain.PaymentDetail{}, paymentdomain.ErrNotFound
	}

	allocations, err := s.repo.ListAllocations(ctx, s.db, orgID, id)
	if err != nil {
		return paymentdomain.PaymentDetail{}, err
	}

	return paymentdomain.PaymentDetail{
		Payment:     *payment,
		Allocations: allocations,
	}, nil
}

// generatePaymentNo builds a human-readable receipt number. The millisecond
// timestamp keeps it roughly sortable and the random suffix avoids
// collisions when receipts arrive in the same millisecond.
func (s *Service) generatePaymentNo(now time.Time) string {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("PAY%d%04X", now.UnixMilli(), s.genID.Generate()%0x10000)
	}
	return fmt.Sprintf("PAY%d%s", now.UnixMilli(), strings.ToUpper(hex.EncodeToString(suffix)))
}
