package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, InvoiceStatusOpen, DeriveStatus(100, 100))
	assert.Equal(t, InvoiceStatusPartial, DeriveStatus(100, 40))
	assert.Equal(t, InvoiceStatusClosed, DeriveStatus(100, 0))
}

func TestSettled(t *testing.T) {
	assert.False(t, Invoice{Balance: 1}.Settled())
	assert.True(t, Invoice{Balance: 0}.Settled())
}
