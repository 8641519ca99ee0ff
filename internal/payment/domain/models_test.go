package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusUnapplied, DeriveStatus(100, 100))
	assert.Equal(t, PaymentStatusPartial, DeriveStatus(100, 40))
	assert.Equal(t, PaymentStatusApplied, DeriveStatus(100, 0))
}

func TestValidMethod(t *testing.T) {
	assert.True(t, ValidMethod(MethodBankTransfer))
	assert.True(t, ValidMethod(MethodCheck))
	assert.True(t, ValidMethod(MethodCash))
	assert.True(t, ValidMethod(MethodOther))
	assert.False(t, ValidMethod("WIRE"))
	assert.False(t, ValidMethod(""))
}
