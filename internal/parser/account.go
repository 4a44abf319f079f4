package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finlens/statement-engine/internal/engine"
	"github.com/finlens/statement-engine/internal/models"
)

// accountState enumerates the machine states of the account statement
// layout. accountDone is absorbing: trailing footer lines are still scanned
// for account information but produce no transactions.
type accountState int

const (
	accountSearching accountState = iota // before the transaction table
	accountTable                         // inside the transaction rows
	accountDone                          // past the closing balance row
)

func (s accountState) String() string {
	switch s {
	case accountSearching:
		return "searching"
	case accountTable:
		return "table"
	case accountDone:
		return "done"
	}
	return fmt.Sprintf("accountState(%d)", int(s))
}

// AccountStatement parses FAB-style current account statements.
//
// Layout:
//
//	DATE | VALUE DATE | DESCRIPTION | DEBIT/CREDIT | BALANCE
//
// Example row: "01 JAN 2024 01 JAN 2024 POS Settlement GROCERY STORE 150.00 9,850.00"
// Long descriptions wrap onto continuation lines; the amount and balance
// arrive on the last physical line of the row.
type AccountStatement struct {
	opts           engine.Options
	incomeKeywords []string
	pending        *pendingTxn
}

// AccountConfig tunes heuristics that vary between statement revisions.
type AccountConfig struct {
	// IncomeKeywords classify a transaction as money in when any of them
	// appears in the description. Matching is case-insensitive.
	IncomeKeywords []string
}

// Statement revisions disagree on the exact list; these cover the shapes
// seen across account statement samples. Overridable via AccountConfig.
var defaultIncomeKeywords = []string{
	"deposit", "salary", "refund", "reversal",
	"cashback", "inward", "received",
}

// NewAccountStatement returns an account statement parser with default
// heuristics. The value owns per-document carry state; use one per document.
func NewAccountStatement(opts engine.Options) *AccountStatement {
	return NewAccountStatementWith(AccountConfig{}, opts)
}

// NewAccountStatementWith overrides the default heuristics.
func NewAccountStatementWith(cfg AccountConfig, opts engine.Options) *AccountStatement {
	keywords := cfg.IncomeKeywords
	if keywords == nil {
		keywords = defaultIncomeKeywords
	}
	return &AccountStatement{opts: opts, incomeKeywords: keywords}
}

func (p *AccountStatement) FormatName() string {
	return "FAB account statement"
}

var (
	// Full transaction row: transaction date, value date, description,
	// amount, balance.
	accountRowPattern = regexp.MustCompile(
		`^(` + dateToken + `) (` + dateToken + `) (.+?) (` + amountToken + `) (` + amountToken + `)$`,
	)
	// Row start without trailing amount and balance; the rest of the
	// transaction arrives on continuation lines.
	accountRowStartPattern = regexp.MustCompile(
		`^(` + dateToken + `) (` + dateToken + `) (.+)$`,
	)
	// Continuation tail carrying the amount and balance that complete a
	// pending transaction.
	accountRowTailPattern = regexp.MustCompile(
		`^(.*?)\s*(` + amountToken + `) (` + amountToken + `)$`,
	)

	// Account numbers like 01-123456-45-6; the final digit is the suffix
	// used to identify the account without storing the full number.
	accountNumberPattern = regexp.MustCompile(`\b\d{2}-\d{3,}-\d{2}-(\d)\b`)
	accountPeriodPattern = regexp.MustCompile(
		`(?i)\b(` + dateToken + `)\s+TO\s+(` + dateToken + `)\b`,
	)
)

var accountNameLabels = []string{"ACCOUNT NAME", "CUSTOMER NAME", "ACCOUNT HOLDER"}

// accountRow is the partial field set produced by the row matchers.
type accountRow struct {
	dateText string
	desc     string
	amount   decimal.Decimal
	balance  decimal.Decimal
	partial  bool // row start without amount; opens a pending transaction
	tail     bool // amount-bearing tail; completes a pending transaction
}

// rowMatchers is the ordered fallback chain for transaction-row shapes.
// First success wins.
func (p *AccountStatement) rowMatchers() []engine.Matcher[accountRow] {
	return []engine.Matcher[accountRow]{
		{Name: "full-row", Match: func(line string) (accountRow, bool) {
			m := accountRowPattern.FindStringSubmatch(line)
			if m == nil {
				return accountRow{}, false
			}
			amount, err1 := parseAmount(m[4])
			balance, err2 := parseAmount(m[5])
			if err1 != nil || err2 != nil {
				return accountRow{}, false
			}
			return accountRow{dateText: m[1], desc: strings.TrimSpace(m[3]), amount: amount, balance: balance}, true
		}},
		{Name: "row-start", Match: func(line string) (accountRow, bool) {
			m := accountRowStartPattern.FindStringSubmatch(line)
			if m == nil {
				return accountRow{}, false
			}
			return accountRow{dateText: m[1], desc: strings.TrimSpace(m[3]), partial: true}, true
		}},
		{Name: "amount-tail", Match: func(line string) (accountRow, bool) {
			m := accountRowTailPattern.FindStringSubmatch(line)
			if m == nil {
				return accountRow{}, false
			}
			amount, err1 := parseAmount(m[2])
			balance, err2 := parseAmount(m[3])
			if err1 != nil || err2 != nil {
				return accountRow{}, false
			}
			return accountRow{desc: strings.TrimSpace(m[1]), amount: amount, balance: balance, tail: true}, true
		}},
	}
}

// Parse runs the account plugin over the line sequence.
func (p *AccountStatement) Parse(lines []string) (*models.Statement, error) {
	p.pending = nil // carry state is scoped to a single run
	statement := &models.Statement{Format: models.FormatAccount}
	return engine.Run(lines, p.plugin(), p.opts, statement)
}

func (p *AccountStatement) plugin() engine.Plugin[accountState, *models.Statement] {
	return engine.Plugin[accountState, *models.Statement]{
		Initial:    accountSearching,
		Terminal:   accountDone,
		Transition: p.transition,
		Action:     p.action,
		Keywords:   []string{"ACCOUNT STATEMENT", "BALANCE BROUGHT FORWARD", "BALANCE CARRIED FORWARD"},
	}
}

func (p *AccountStatement) transition(state accountState, line string, _ engine.Options) (accountState, error) {
	switch state {
	case accountSearching:
		if isAccountTableHeader(line) || isOpeningBalanceLine(line) {
			return accountTable, nil
		}
		return accountSearching, nil
	case accountTable:
		if isClosingBalanceLine(line) {
			return accountDone, nil
		}
		return accountTable, nil
	default:
		// accountDone and anything unexpected stay put; the terminal state
		// must be absorbing.
		return state, nil
	}
}

func (p *AccountStatement) action(state accountState, line string, st *models.Statement, opts engine.Options) (*models.Statement, error) {
	// Account metadata can sit anywhere in the document, including after the
	// transaction table, so it is scanned independently of state.
	p.scanHeaderInfo(line, st, opts)

	if state != accountTable {
		return st, nil
	}

	if isAccountSummaryLine(line) {
		// Summary rows never complete a transaction; an unresolved pending
		// description has no amount and can only be dropped.
		p.pending = nil
		return st, nil
	}

	row, matcher, ok := engine.FirstMatch(p.rowMatchers(), line)
	if !ok {
		// Unmatched text inside the table continues a pending description;
		// without a pending transaction it is boilerplate and skipped.
		if p.pending != nil {
			p.pending.desc = append(p.pending.desc, line)
			p.pending.raw = append(p.pending.raw, line)
		}
		return st, nil
	}
	if opts.Trace {
		opts.Logger.Debug("account row", "matcher", matcher, "text", line)
	}

	switch {
	case row.partial:
		// A new transaction start forces early completion of the previous
		// pending one; lacking an amount, it is dropped.
		date, err := parseDate(row.dateText, opts.YearPrefix)
		if err != nil {
			p.pending = nil
			return st, nil
		}
		p.pending = &pendingTxn{date: date, desc: []string{row.desc}, raw: []string{line}}

	case row.tail:
		if p.pending == nil {
			return st, nil
		}
		desc := p.pending.desc
		if row.desc != "" {
			desc = append(desc, row.desc)
		}
		p.record(st, models.Transaction{
			Date:        p.pending.date,
			Amount:      row.amount,
			Description: strings.Join(desc, " "),
			Raw:         append(p.pending.raw, line),
		})
		p.pending = nil

	default:
		p.pending = nil
		date, err := parseDate(row.dateText, opts.YearPrefix)
		if err != nil {
			return st, nil
		}
		p.record(st, models.Transaction{
			Date:        date,
			Amount:      row.amount,
			Description: row.desc,
			Raw:         []string{line},
		})
	}
	return st, nil
}

// record classifies and stores a completed transaction. Zero amounts are
// never recorded.
func (p *AccountStatement) record(st *models.Statement, t models.Transaction) {
	if t.Amount.IsZero() {
		return
	}
	if hasKeyword(t.Description, p.incomeKeywords) {
		st.AddIncome(t)
	} else {
		st.AddExpense(t)
	}
}

func (p *AccountStatement) scanHeaderInfo(line string, st *models.Statement, opts engine.Options) {
	if st.AccountSuffix == "" {
		if m := accountNumberPattern.FindStringSubmatchIndex(line); m != nil {
			st.AccountSuffix = line[m[2]:m[3]]
			if st.HolderName == "" {
				// The holder name often sits on the same line, left of the
				// account number and any label between them.
				before := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[:m[0]]), ":"))
				for _, label := range []string{"ACCOUNT NUMBER", "ACCOUNT NO", "A/C NO"} {
					if idx := strings.LastIndex(strings.ToUpper(before), label); idx >= 0 {
						before = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(before[:idx]), ":"))
					}
				}
				if looksLikeName(before) {
					st.HolderName = before
				}
			}
		}
	}
	if st.HolderName == "" {
		if name := nameNearLabel(line, accountNameLabels); name != "" {
			st.HolderName = name
		}
	}
	if st.Period.From.IsZero() {
		if m := accountPeriodPattern.FindStringSubmatch(line); m != nil {
			from, err1 := parseDate(m[1], opts.YearPrefix)
			to, err2 := parseDate(m[2], opts.YearPrefix)
			if err1 == nil && err2 == nil {
				st.Period = models.StatementPeriod{From: from, To: to}
			}
		}
	}
}

func isAccountTableHeader(line string) bool {
	upper := strings.ToUpper(line)
	return strings.Contains(upper, "DATE") &&
		strings.Contains(upper, "DESCRIPTION") &&
		strings.Contains(upper, "BALANCE")
}

func isOpeningBalanceLine(line string) bool {
	return hasKeyword(line, []string{"balance brought forward", "opening balance"})
}

func isClosingBalanceLine(line string) bool {
	return hasKeyword(line, []string{"balance carried forward", "closing balance", "end of statement"})
}

func isAccountSummaryLine(line string) bool {
	return hasKeyword(line, []string{
		"balance brought forward", "balance carried forward",
		"opening balance", "closing balance",
		"total debits", "total credits",
		"end of statement", "continued", "page ",
	})
}
