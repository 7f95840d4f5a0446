package accounting

import (
	"github.com/shopspring/decimal"
)

// ReconciliationFigures is the arithmetic behind a bank reconciliation.
type ReconciliationFigures struct {
	ReconciledBalance decimal.Decimal // opening + sum(selected)
	Difference        decimal.Decimal // statement - reconciled
	CanComplete       bool
}

// Reconcile computes the reconciled balance and its difference from the statement.
// Completion is allowed only while |difference| < BalanceTolerance.
func Reconcile(opening, statement decimal.Decimal, selected []decimal.Decimal) ReconciliationFigures {
	reconciled := opening
	for _, amt := range selected {
		reconciled = reconciled.Add(amt)
	}
	diff := statement.Sub(reconciled)
	return ReconciliationFigures{
		ReconciledBalance: reconciled,
		Difference:        diff,
		CanComplete:       diff.Abs().LessThan(BalanceTolerance),
	}
}
