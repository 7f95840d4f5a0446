package accounting_test

import (
	"testing"

	"github.com/SscSPs/books_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amounts(ss ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		out[i] = decimal.RequireFromString(s)
	}
	return out
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		opening     string
		statement   string
		selected    []decimal.Decimal
		reconciled  string
		difference  string
		canComplete bool
	}{
		{"matches statement", "500", "620", amounts("150", "-30"), "620.00", "0.00", true},
		{"short by twenty", "500", "600", amounts("150", "-30"), "620.00", "-20.00", false},
		{"nothing selected", "0", "0", nil, "0.00", "0.00", true},
		{"within a cent", "100", "100.004", nil, "100.00", "0.00", true},
		{"exactly a cent off", "100", "100.01", nil, "100.00", "0.01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accounting.Reconcile(decimal.RequireFromString(tt.opening), decimal.RequireFromString(tt.statement), tt.selected)
			assert.Equal(t, tt.reconciled, got.ReconciledBalance.StringFixed(2))
			assert.Equal(t, tt.difference, got.Difference.StringFixed(2))
			assert.Equal(t, tt.canComplete, got.CanComplete)
		})
	}
}
