package accounting_test

import (
	"math/rand"
	"testing"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBalance(t *testing.T) {
	tests := []struct {
		name        string
		lines       []accounting.AmountPair
		wantDebit   string
		wantCredit  string
		wantBalance bool
		wantErr     error
	}{
		{
			name:        "empty input is balanced at zero",
			lines:       nil,
			wantDebit:   "0",
			wantCredit:  "0",
			wantBalance: true,
		},
		{
			name: "simple balanced pair",
			lines: []accounting.AmountPair{
				{Debit: "100.00", Credit: "0"},
				{Debit: "0", Credit: "100.00"},
			},
			wantDebit:   "100",
			wantCredit:  "100",
			wantBalance: true,
		},
		{
			name: "empty strings count as zero",
			lines: []accounting.AmountPair{
				{Debit: "25.50"},
				{Credit: "25.50"},
			},
			wantDebit:   "25.5",
			wantCredit:  "25.5",
			wantBalance: true,
		},
		{
			name: "difference under a cent is tolerated",
			lines: []accounting.AmountPair{
				{Debit: "10.005"},
				{Credit: "10"},
			},
			wantDebit:   "10.005",
			wantCredit:  "10",
			wantBalance: true,
		},
		{
			name: "difference of exactly one cent is unbalanced",
			lines: []accounting.AmountPair{
				{Debit: "10.01"},
				{Credit: "10"},
			},
			wantDebit:   "10.01",
			wantCredit:  "10",
			wantBalance: false,
		},
		{
			name: "unbalanced",
			lines: []accounting.AmountPair{
				{Debit: "100.00"},
				{Credit: "90.00"},
			},
			wantDebit:   "100",
			wantCredit:  "90",
			wantBalance: false,
		},
		{
			name:    "garbage amount",
			lines:   []accounting.AmountPair{{Debit: "abc"}},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "negative amount",
			lines:   []accounting.AmountPair{{Credit: "-5"}},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.EvaluateBalance(tt.lines)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantDebit).Equal(got.TotalDebit), "debit total %s", got.TotalDebit)
			assert.True(t, decimal.RequireFromString(tt.wantCredit).Equal(got.TotalCredit), "credit total %s", got.TotalCredit)
			assert.Equal(t, tt.wantBalance, got.IsBalanced)
		})
	}
}

func TestValidateLines_InsufficientLines(t *testing.T) {
	for _, lines := range [][]accounting.AmountPair{nil, {{Debit: "1", Credit: "1"}}} {
		_, err := accounting.ValidateLines(lines)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientLines)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestRequireBalanced(t *testing.T) {
	_, err := accounting.RequireBalanced([]accounting.AmountPair{{Debit: "100.00"}, {Credit: "90.00"}})
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
	assert.Contains(t, err.Error(), "100.00")
	assert.Contains(t, err.Error(), "90.00")

	res, err := accounting.RequireBalanced([]accounting.AmountPair{{Debit: "40"}, {Debit: "60"}, {Credit: "100"}})
	require.NoError(t, err)
	assert.True(t, res.IsBalanced)
}

// Random cent-denominated line sets: the validator agrees with an independent integer-cents computation.
func TestEvaluateBalance_MatchesIntegerCents(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := rng.Intn(8)
		lines := make([]accounting.AmountPair, n)
		var debitCents, creditCents int64
		for j := range lines {
			d := rng.Int63n(1_000_000)
			c := rng.Int63n(1_000_000)
			if rng.Intn(3) == 0 {
				c = 0
			}
			if rng.Intn(3) == 0 {
				d = 0
			}
			debitCents += d
			creditCents += c
			lines[j] = accounting.AmountPair{
				Debit:  decimal.New(d, -2).StringFixed(2),
				Credit: decimal.New(c, -2).StringFixed(2),
			}
		}
		if n > 0 && rng.Intn(2) == 0 {
			// Force a balanced set half of the time.
			diff := debitCents - creditCents
			if diff > 0 {
				lines = append(lines, accounting.AmountPair{Credit: decimal.New(diff, -2).StringFixed(2)})
				creditCents += diff
			} else if diff < 0 {
				lines = append(lines, accounting.AmountPair{Debit: decimal.New(-diff, -2).StringFixed(2)})
				debitCents -= diff
			}
		}

		got, err := accounting.EvaluateBalance(lines)
		require.NoError(t, err)
		assert.Equal(t, debitCents == creditCents, got.IsBalanced, "iteration %d", i)
		assert.True(t, decimal.New(debitCents, -2).Equal(got.TotalDebit))
		assert.True(t, decimal.New(creditCents, -2).Equal(got.TotalCredit))
	}
}

func TestSignedAmount(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	assert.True(t, hundred.Equal(accounting.SignedAmount(domain.DebitNormal, hundred, decimal.Zero)))
	assert.True(t, hundred.Neg().Equal(accounting.SignedAmount(domain.DebitNormal, decimal.Zero, hundred)))
	assert.True(t, hundred.Equal(accounting.SignedAmount(domain.CreditNormal, decimal.Zero, hundred)))
	assert.True(t, hundred.Neg().Equal(accounting.SignedAmount(domain.CreditNormal, hundred, decimal.Zero)))
}

func TestBalanceChangesAndNegate(t *testing.T) {
	accounts := map[string]domain.Account{
		"cash":    {AccountID: "cash", AccountType: domain.Asset},
		"revenue": {AccountID: "revenue", AccountType: domain.Revenue},
	}
	lines := []domain.JournalLine{
		{AccountID: "cash", Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
		{AccountID: "revenue", Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
	}

	changes, err := accounting.BalanceChanges(lines, accounts)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(changes["cash"]))
	assert.True(t, decimal.NewFromInt(100).Equal(changes["revenue"]))

	reversed := accounting.Negate(changes)
	for id := range changes {
		assert.True(t, changes[id].Add(reversed[id]).IsZero())
	}

	_, err = accounting.BalanceChanges([]domain.JournalLine{{AccountID: "missing"}}, accounts)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParseAmount_StoredScale(t *testing.T) {
	for _, ok := range []string{"100", "100.1234", "100.12340000", "0.0001", ""} {
		_, err := accounting.ParseAmount(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"100.00995", "0.00001", "1.23456"} {
		_, err := accounting.ParseAmount(bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation, bad)
	}

	// Lines that only balance before rounding to the stored scale are refused outright.
	_, err := accounting.RequireBalanced([]accounting.AmountPair{{Debit: "100.00995"}, {Credit: "100.00"}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NotErrorIs(t, err, apperrors.ErrUnbalancedEntry)
}
