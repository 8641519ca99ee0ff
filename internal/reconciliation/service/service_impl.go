package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/collecta/internal/audit/domain"
	"github.com/smallbiznis/collecta/internal/clock"
	idemdomain "github.com/smallbiznis/collecta/internal/idempotency/domain"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	"github.com/smallbiznis/collecta/internal/metrics"
	"github.com/smallbiznis/collecta/internal/orgcontext"
	paymentdomain "github.com/smallbiznis/collecta/internal/payment/domain"
	recondomain "github.com/smallbiznis/collecta/internal/reconciliation/domain"
	"github.com/smallbiznis/collecta/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        recondomain.Repository
	PaymentRepo paymentdomain.Repository
	InvoiceRepo invoicedomain.Repository
	Gate        idemdomain.Gate
	Audit       auditdomain.Service
	Metrics     *metrics.Metrics
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        recondomain.Repository
	paymentRepo paymentdomain.Repository
	invoiceRepo invoicedomain.Repository
	gate        idemdomain.Gate
	audit       auditdomain.Service
	metrics     *metrics.Metrics
}

func NewService(p Params) recondomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("reconciliation.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		paymentRepo: p.PaymentRepo,
		invoiceRepo: p.InvoiceRepo,
		gate:        p.Gate,
		audit:       p.Audit,
		metrics:     p.Metrics,
	}
}

// fingerprintPayload is what an idempotency key is pinned to: the semantic
// content of the apply request, never the key itself.
type fingerprintPayload struct {
	PaymentID  snowflake.ID                  `json:"payment_id"`
	Applies    []recondomain.AllocationInput `json:"applies"`
	OperatorID snowflake.ID                  `json:"operator_id"`
	Remark     string                        `json:"remark"`
}

// Apply allocates a payment's unapplied money across one or more invoices
// in a single transaction. Either every allocation line lands or none do;
// invoice balances, the payment's unapplied amount and the apply rows move
// together so money is conserved at every commit point.
func (s *Service) Apply(ctx context.Context, req recondomain.ApplyPaymentRequest) (*recondomain.ApplyOutcome, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, recondomain.ErrInvalidOrganization
	}
	if err := validateApplyRequest(req); err != nil {
		s.metrics.RecordApply(err.Error(), 0)
		return nil, err
	}

	run := func(tx *gorm.DB) (any, error) {
		return s.applyAll(ctx, tx, orgID, req)
	}

	var outcome *recondomain.ApplyOutcome
	var err error
	if req.IdempotencyKey != "" {
		fingerprint := idemdomain.Fingerprint(fingerprintPayload{
			PaymentID:  req.PaymentID,
			Applies:    req.Applies,
			OperatorID: req.OperatorID,
			Remark:     req.Remark,
		})
		var result *idemdomain.Result
		result, err = s.gate.Execute(ctx, req.IdempotencyKey, fingerprint, run)
		if err == nil {
			outcome = &recondomain.ApplyOutcome{Replayed: result.Replayed, Raw: result.Stored}
			if !result.Replayed {
				outcome.Response = result.Value.(*recondomain.ApplyPaymentResponse)
			}
		}
	} else {
		var resp *recondomain.ApplyPaymentResponse
		txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var innerErr error
			resp, innerErr = s.applyAll(ctx, tx, orgID, req)
			return innerErr
		})
		if txErr != nil {
			err = txErr
		} else {
			raw, marshalErr := json.Marshal(resp)
			if marshalErr != nil {
				return nil, marshalErr
			}
			outcome = &recondomain.ApplyOutcome{Raw: datatypes.JSON(raw), Response: resp}
		}
	}

	operator := req.OperatorID
	if err != nil {
		s.metrics.RecordApply(err.Error(), 0)
		s.recordAudit(ctx, auditdomain.Entry{
			OrgID:        orgID,
			ActorID:      &operator,
			Action:       auditdomain.ActionReject,
			ResourceType: auditdomain.ResourcePayment,
			ResourceID:   req.PaymentID.String(),
			NewValue:     map[string]any{"reason": err.Error(), "applies": req.Applies},
		})
		return nil, err
	}

	if !outcome.Replayed {
		s.metrics.RecordApply("applied", outcome.Response.TotalApplied)
		s.recordAudit(ctx, auditdomain.Entry{
			OrgID:        orgID,
			ActorID:      &operator,
			Action:       auditdomain.ActionApply,
			ResourceType: auditdomain.ResourcePayment,
			ResourceID:   req.PaymentID.String(),
			NewValue:     outcome.Response,
		})
	}
	return outcome, nil
}

func validateApplyRequest(req recondomain.ApplyPaymentRequest) error {
	if req.OperatorID == 0 {
		return recondomain.ErrInvalidOperator
	}
	if len(req.Applies) == 0 {
		return recondomain.ErrEmptyAllocations
	}
	seen := make(map[snowflake.ID]struct{}, len(req.Applies))
	for _, alloc := range req.Applies {
		if alloc.Amount <= 0 {
			return recondomain.ErrInvalidAmount
		}
		if _, dup := seen[alloc.InvoiceID]; dup {
			return recondomain.ErrDuplicateAllocation
		}
		seen[alloc.InvoiceID] = struct{}{}
	}
	return nil
}

// applyAll runs the whole batch inside the caller's transaction. Any error
// rolls everything back, including the idempotency record.
func (s *Service) applyAll(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, req recondomain.ApplyPaymentRequest) (*recondomain.ApplyPaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, tx, orgID, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, paymentdomain.ErrNotFound
	}

	var total int64
	for _, alloc := range req.Applies {
		// A sum that would wrap past MaxInt64 already exceeds any
		// representable unapplied amount.
		if alloc.Amount > math.MaxInt64-total {
			return nil, recondomain.ErrInsufficientPaymentBalance
		}
		total += alloc.Amount
	}
	if total > payment.UnappliedAmount {
		return nil, recondomain.ErrInsufficientPaymentBalance
	}

	now := s.clock.Now()
	applied := make([]recondomain.AppliedInvoice, 0, len(req.Applies))
	for _, alloc := range req.Applies {
		row, err := s.applyOnce(ctx, tx, orgID, payment, alloc, req, now)
		if err != nil {
			return nil, err
		}
		applied = append(applied, *row)
	}

	newUnapplied := payment.UnappliedAmount - total
	newStatus := paymentdomain.DeriveStatus(payment.Amount, newUnapplied)
	updated, err := s.paymentRepo.UpdateUnapplied(ctx, tx, payment.ID, payment.Version, newUnapplied, newStatus, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, recondomain.ErrConcurrentModification
	}

	return &recondomain.ApplyPaymentResponse{
		PaymentID:       payment.ID,
		PaymentNo:       payment.PaymentNo,
		TotalApplied:    total,
		UnappliedAmount: newUnapplied,
		PaymentStatus:   newStatus,
		AppliedInvoices: applied,
	}, nil
}

// applyOnce lands a single allocation line: checks the pair has not been
// applied before, verifies the invoice can absorb the amount, inserts the
// apply row and commits the new balance under the invoice's version.
func (s *Service) applyOnce(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, payment *paymentdomain.Payment, alloc recondomain.AllocationInput, req recondomain.ApplyPaymentRequest, now time.Time) (*recondomain.AppliedInvoice, error) {
	existing, err := s.repo.FindPair(ctx, tx, payment.ID, alloc.InvoiceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, recondomain.ErrDuplicateAllocation
	}

	invoice, err := s.repo.FindInvoice(ctx, tx, alloc.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrNotFound
	}
	if invoice.OrgID != orgID {
		return nil, recondomain.ErrOrgMismatch
	}
	if alloc.Amount > invoice.Balance {
		return nil, recondomain.ErrInsufficientInvoiceBalance
	}

	apply := &recondomain.Apply{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		PaymentID:     payment.ID,
		InvoiceID:     invoice.ID,
		AppliedAmount: alloc.Amount,
		OperatorID:    req.OperatorID,
		CreatedAt:     now,
	}
	if req.Remark != "" {
		apply.Remark = &req.Remark
	}
	if err := s.repo.Insert(ctx, tx, apply); err != nil {
		// The unique pair index closes the race two concurrent batches
		// would otherwise win together.
		if db.IsDuplicateKeyErr(err) {
			return nil, recondomain.ErrDuplicateAllocation
		}
		return nil, err
	}

	newBalance := invoice.Balance - alloc.Amount
	newStatus := invoicedomain.DeriveStatus(invoice.Amount, newBalance)
	updated, err := s.invoiceRepo.UpdateBalance(ctx, tx, invoice.ID, invoice.Version, newBalance, newStatus, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, recondomain.ErrConcurrentModification
	}

	return &recondomain.AppliedInvoice{
		InvoiceID:     invoice.ID,
		InvoiceNo:     invoice.InvoiceNo,
		AppliedAmount: alloc.Amount,
		BeforeBalance: invoice.Balance,
		AfterBalance:  newBalance,
		Status:        newStatus,
	}, nil
}

// Suggest walks the customer's open invoices oldest due first and proposes
// allocations until the payment's unapplied remainder runs out.
func (s *Service) Suggest(ctx context.Context, paymentID snowflake.ID) (recondomain.SuggestResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return recondomain.SuggestResponse{}, recondomain.ErrInvalidOrganization
	}

	payment, err := s.paymentRepo.FindByID(ctx, s.db, orgID, paymentID)
	if err != nil {
		return recondomain.SuggestResponse{}, err
	}
	if payment == nil {
		return recondomain.SuggestResponse{}, paymentdomain.ErrNotFound
	}

	resp := recondomain.SuggestResponse{
		PaymentID:       payment.ID,
		UnappliedAmount: payment.UnappliedAmount,
		Suggestions:     []recondomain.SuggestedAllocation{},
	}
	if payment.UnappliedAmount == 0 {
		return resp, nil
	}

	customerID := payment.CustomerID
	invoices, err := s.invoiceRepo.ListOpen(ctx, s.db, orgID, &customerID)
	if err != nil {
		return recondomain.SuggestResponse{}, err
	}
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].DueDate.Before(invoices[j].DueDate)
	})

	remaining := payment.UnappliedAmount
	for _, invoice := range invoices {
		if remaining == 0 {
			break
		}
		if invoice.Balance <= 0 {
			continue
		}
		amount := recondomain.Suggest(remaining, invoice.Balance)
		resp.Suggestions = append(resp.Suggestions, recondomain.SuggestedAllocation{
			InvoiceID:       invoice.ID,
			InvoiceNo:       invoice.InvoiceNo,
			DueDate:         invoice.DueDate,
			Balance:         invoice.Balance,
			SuggestedAmount: amount,
		})
		remaining -= amount
	}

	return resp, nil
}

func (s *Service) recordAudit(ctx context.Context, entry auditdomain.Entry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("failed to record reconciliation audit log",
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
}
