package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	"gorm.io/gorm"
)

type Repository interface {
	// FindPair returns the existing allocation for a (payment, invoice)
	// pair, or nil when the pair has never been applied.
	FindPair(ctx context.Context, db *gorm.DB, paymentID, invoiceID snowflake.ID) (*Apply, error)
	Insert(ctx context.Context, db *gorm.DB, apply *Apply) error
	ListByPayment(ctx context.Context, db *gorm.DB, orgID, paymentID snowflake.ID) ([]Apply, error)
	// FindInvoice looks an invoice up without an org filter so the engine
	// can distinguish a missing invoice from one owned by another org.
	FindInvoice(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error)
}
