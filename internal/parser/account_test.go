package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/statement-engine/internal/engine"
	"github.com/finlens/statement-engine/internal/models"
)

var accountFixture = []string{
	"FIRST ABU DHABI BANK",
	"ACCOUNT STATEMENT",
	"MR JOHN SMITH ACCOUNT NUMBER 01-123456-45-6",
	"STATEMENT FROM 01 JAN 2024 TO 31 JAN 2024",
	"DATE VALUE DATE DESCRIPTION DEBIT CREDIT BALANCE",
	"BALANCE BROUGHT FORWARD 10,000.00",
	"01 JAN 2024 01 JAN 2024 POS Settlement GROCERY STORE DUBAI AED 150 150.00 9,850.00",
	"02 JAN 2024 02 JAN 2024 ATM Cash Deposit AL WAHDA MALL 5,000.00 14,850.00",
	"03 JAN 2024 03 JAN 2024 Inward Telex Transfer",
	"REF 889900 SALARY PAYMENT 8,000.00 22,850.00",
	"BALANCE CARRIED FORWARD 22,850.00",
	"END OF STATEMENT",
}

func TestAccountStatementParse(t *testing.T) {
	p := NewAccountStatement(engine.Options{})

	st, err := p.Parse(accountFixture)
	require.NoError(t, err)

	assert.Equal(t, models.FormatAccount, st.Format)
	assert.Equal(t, "MR JOHN SMITH", st.HolderName)
	assert.Equal(t, "6", st.AccountSuffix)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), st.Period.From)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), st.Period.To)

	require.Len(t, st.Expenses, 1)
	require.Len(t, st.Incomes, 2)
}

func TestAccountStatementExpenseRow(t *testing.T) {
	p := NewAccountStatement(engine.Options{})
	st, err := p.Parse(accountFixture)
	require.NoError(t, err)

	require.Len(t, st.Expenses, 1)
	exp := st.Expenses[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), exp.Date)
	assert.True(t, exp.Amount.Equal(decimal.RequireFromString("-150.00")),
		"amount: got %s", exp.Amount)
	assert.Equal(t, "POS Settlement GROCERY STORE DUBAI AED 150", exp.Description)
	assert.Equal(t, []string{accountFixture[6]}, exp.Raw)
}

func TestAccountStatementIncomeClassification(t *testing.T) {
	p := NewAccountStatement(engine.Options{})
	st, err := p.Parse(accountFixture)
	require.NoError(t, err)

	require.Len(t, st.Incomes, 2)
	deposit := st.Incomes[0]
	assert.True(t, deposit.Amount.Equal(decimal.RequireFromString("5000.00")),
		"amount: got %s", deposit.Amount)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), deposit.Date)
}

func TestAccountStatementMultiLineContinuation(t *testing.T) {
	p := NewAccountStatement(engine.Options{})
	st, err := p.Parse(accountFixture)
	require.NoError(t, err)

	require.Len(t, st.Incomes, 2)
	transfer := st.Incomes[1]
	assert.Equal(t, "Inward Telex Transfer REF 889900 SALARY PAYMENT", transfer.Description)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), transfer.Date)
	assert.True(t, transfer.Amount.Equal(decimal.RequireFromString("8000.00")))
	// Raw preserves both physical lines of the wrapped row.
	assert.Equal(t, []string{accountFixture[8], accountFixture[9]}, transfer.Raw)
}

func TestAccountStatementSignInvariant(t *testing.T) {
	p := NewAccountStatement(engine.Options{})
	st, err := p.Parse(accountFixture)
	require.NoError(t, err)

	for _, txn := range st.Incomes {
		assert.True(t, txn.Amount.IsPositive(), "income %q must be positive", txn.Description)
	}
	for _, txn := range st.Expenses {
		assert.True(t, txn.Amount.IsNegative(), "expense %q must be negative", txn.Description)
	}
}

func TestAccountStatementEmptyDocument(t *testing.T) {
	p := NewAccountStatement(engine.Options{})

	st, err := p.Parse(nil)
	require.NoError(t, err)

	assert.Empty(t, st.Incomes)
	assert.Empty(t, st.Expenses)
	assert.Empty(t, st.HolderName)
	assert.Empty(t, st.AccountSuffix)
	assert.True(t, st.Period.From.IsZero())
}

func TestAccountStatementIdempotence(t *testing.T) {
	// Fresh parser values per run: carry state must never leak between
	// parses, so two runs produce structurally equal statements.
	first, err := NewAccountStatement(engine.Options{}).Parse(accountFixture)
	require.NoError(t, err)
	second, err := NewAccountStatement(engine.Options{}).Parse(accountFixture)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAccountStatementTerminalStateAbsorbing(t *testing.T) {
	p := NewAccountStatement(engine.Options{})

	for _, line := range []string{
		"END OF STATEMENT",
		"01 JAN 2024 01 JAN 2024 POS Settlement 150.00 9,850.00",
		"DATE VALUE DATE DESCRIPTION DEBIT CREDIT BALANCE",
		"",
	} {
		next, err := p.transition(accountDone, line, engine.Options{})
		require.NoError(t, err)
		assert.Equal(t, accountDone, next)
	}
}

func TestAccountStatementHeaderInfoAfterTable(t *testing.T) {
	// Account info in footer lines is still extracted after the terminal
	// state is reached.
	lines := []string{
		"DATE VALUE DATE DESCRIPTION DEBIT CREDIT BALANCE",
		"01 JAN 2024 01 JAN 2024 POS Settlement CAFE 45.00 955.00",
		"BALANCE CARRIED FORWARD 955.00",
		"ACCOUNT NAME: MRS JANE DOE",
		"STATEMENT FROM 01 JAN 2024 TO 31 JAN 2024",
	}

	st, err := NewAccountStatement(engine.Options{}).Parse(lines)
	require.NoError(t, err)

	assert.Equal(t, "MRS JANE DOE", st.HolderName)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), st.Period.To)
	require.Len(t, st.Expenses, 1)
}

func TestAccountStatementDropsPendingWithoutAmount(t *testing.T) {
	lines := []string{
		"DATE VALUE DATE DESCRIPTION DEBIT CREDIT BALANCE",
		"01 JAN 2024 01 JAN 2024 Incomplete wrapped row",
		"BALANCE CARRIED FORWARD 955.00",
	}

	st, err := NewAccountStatement(engine.Options{}).Parse(lines)
	require.NoError(t, err)

	// The pending transaction never saw an amount; recording it with zero
	// would break the sign invariant, so it is dropped.
	assert.Empty(t, st.Incomes)
	assert.Empty(t, st.Expenses)
}

func TestAccountStatementCustomIncomeKeywords(t *testing.T) {
	lines := []string{
		"DATE VALUE DATE DESCRIPTION DEBIT CREDIT BALANCE",
		"05 JAN 2024 05 JAN 2024 DIVIDEND PAYOUT BROKERAGE 300.00 1,300.00",
		"BALANCE CARRIED FORWARD 1,300.00",
	}

	// Default keywords treat the row as an expense.
	st, err := NewAccountStatement(engine.Options{}).Parse(lines)
	require.NoError(t, err)
	require.Len(t, st.Expenses, 1)

	// A revision-specific keyword list flips the classification.
	cfg := AccountConfig{IncomeKeywords: []string{"dividend"}}
	st, err = NewAccountStatementWith(cfg, engine.Options{}).Parse(lines)
	require.NoError(t, err)
	require.Len(t, st.Incomes, 1)
	assert.Empty(t, st.Expenses)
}
