package accounting

import (
	"fmt"
	"strings"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest debit/credit difference still treated as balanced.
// Comparisons are strict: a difference of exactly 0.01 is unbalanced.
var BalanceTolerance = decimal.New(1, -2)

// AmountScale is the number of decimal places stored for an amount.
const AmountScale int32 = 4

// FitsScale reports whether d can be stored without rounding.
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// AmountPair is the raw debit/credit input of one journal line, as decimal strings.
type AmountPair struct {
	Debit  string
	Credit string
}

// BalanceResult holds the column totals of a set of lines.
type BalanceResult struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	IsBalanced  bool
}

// Difference returns TotalDebit - TotalCredit.
func (r BalanceResult) Difference() decimal.Decimal {
	return r.TotalDebit.Sub(r.TotalCredit)
}

// ParseAmount parses a non-negative decimal string with at most AmountScale places. Empty input is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal amount", apperrors.ErrValidation, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount %s must not be negative", apperrors.ErrValidation, s)
	}
	if !FitsScale(d) {
		return decimal.Zero, fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, s, AmountScale)
	}
	return d, nil
}

// IsWithinTolerance reports whether |a - b| < BalanceTolerance.
func IsWithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(BalanceTolerance)
}

// EvaluateBalance totals the debit and credit columns of lines.
// Create, edit, post and the live editing indicator all call it.
func EvaluateBalance(lines []AmountPair) (BalanceResult, error) {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, l := range lines {
		debit, err := ParseAmount(l.Debit)
		if err != nil {
			return BalanceResult{}, fmt.Errorf("line %d debit: %w", i+1, err)
		}
		credit, err := ParseAmount(l.Credit)
		if err != nil {
			return BalanceResult{}, fmt.Errorf("line %d credit: %w", i+1, err)
		}
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)
	}
	return BalanceResult{
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		IsBalanced:  IsWithinTolerance(totalDebit, totalCredit),
	}, nil
}

// ValidateLines enforces the two-line minimum and then evaluates the balance.
// An unbalanced result is not an error here; callers decide whether balance is required.
func ValidateLines(lines []AmountPair) (BalanceResult, error) {
	if len(lines) < 2 {
		return BalanceResult{}, apperrors.ErrInsufficientLines
	}
	return EvaluateBalance(lines)
}

// RequireBalanced runs ValidateLines and turns an unbalanced result into ErrUnbalancedEntry.
func RequireBalanced(lines []AmountPair) (BalanceResult, error) {
	res, err := ValidateLines(lines)
	if err != nil {
		return res, err
	}
	if !res.IsBalanced {
		return res, fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, res.TotalDebit.StringFixed(2), res.TotalCredit.StringFixed(2))
	}
	return res, nil
}

// PairsFromLines renders stored lines back into AmountPairs so persisted entries
// are checked by the same function as incoming requests.
func PairsFromLines(lines []domain.JournalLine) []AmountPair {
	pairs := make([]AmountPair, len(lines))
	for i, l := range lines {
		pairs[i] = AmountPair{Debit: l.Debit.String(), Credit: l.Credit.String()}
	}
	return pairs
}

// SignedAmount is the effect of a debit/credit pair on an account's balance.
// DEBIT-normal accounts grow by debit - credit, CREDIT-normal accounts by credit - debit.
func SignedAmount(normal domain.NormalBalance, debit, credit decimal.Decimal) decimal.Decimal {
	if normal == domain.DebitNormal {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// BalanceChanges computes the net change per account that posting lines would cause.
func BalanceChanges(lines []domain.JournalLine, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal)
	for _, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, l.AccountID)
		}
		if !acc.AccountType.IsValid() {
			return nil, fmt.Errorf("unknown account type '%s' encountered for account ID %s", acc.AccountType, acc.AccountID)
		}
		changes[l.AccountID] = changes[l.AccountID].Add(SignedAmount(acc.NormalBalance(), l.Debit, l.Credit))
	}
	return changes, nil
}

// Negate returns the equal and opposite set of balance changes.
func Negate(changes map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(changes))
	for id, amt := range changes {
		out[id] = amt.Neg()
	}
	return out
}
