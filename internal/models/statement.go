package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormatType identifies a supported statement layout.
type FormatType string

const (
	FormatAccount FormatType = "fab-account"
	FormatCard    FormatType = "fab-card"
)

// Transaction is a single statement entry. The sign of Amount encodes
// direction: positive for money in, negative for money out. A transaction
// is never recorded with a zero amount.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	// Raw holds the reconstructed line(s) the transaction was derived from,
	// in the order they were read.
	Raw []string `json:"originalText,omitempty"`
}

// StatementPeriod is the date range a statement covers.
type StatementPeriod struct {
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
}

// Statement is the accumulated result of parsing one document.
// Incomes and Expenses keep the order in which transactions appeared.
type Statement struct {
	Format        FormatType      `json:"format"`
	HolderName    string          `json:"holderName,omitempty"`
	AccountSuffix string          `json:"accountSuffix,omitempty"`
	Period        StatementPeriod `json:"period"`
	Incomes       []Transaction   `json:"incomes"`
	Expenses      []Transaction   `json:"expenses"`
}

// AddIncome appends an income transaction. Amounts are stored positive.
func (s *Statement) AddIncome(t Transaction) {
	t.Amount = t.Amount.Abs()
	s.Incomes = append(s.Incomes, t)
}

// AddExpense appends an expense transaction. Amounts are stored negative.
func (s *Statement) AddExpense(t Transaction) {
	t.Amount = t.Amount.Abs().Neg()
	s.Expenses = append(s.Expenses, t)
}

// Count returns the total number of recorded transactions.
func (s *Statement) Count() int {
	return len(s.Incomes) + len(s.Expenses)
}
