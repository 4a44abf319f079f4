package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finlens/statement-engine/internal/engine"
	"github.com/finlens/statement-engine/internal/models"
)

// cardState enumerates the machine states of the credit card layout.
type cardState int

const (
	cardSearching cardState = iota // before the transaction table
	cardTable                      // inside the transaction rows
	cardDone                       // past the outstanding-total row
)

func (s cardState) String() string {
	switch s {
	case cardSearching:
		return "searching"
	case cardTable:
		return "table"
	case cardDone:
		return "done"
	}
	return fmt.Sprintf("cardState(%d)", int(s))
}

// CardStatement parses FAB-style credit card statements.
//
// Layout:
//
//	TRANSACTION DATE | DESCRIPTION | AMOUNT [CR]
//
// Example row: "15 JAN 24 AMAZON.AE DUBAI 250.00". Credits carry a trailing
// "CR" marker; everything else is a charge. Card statements print two-digit
// years, so the year-prefix option matters here.
type CardStatement struct {
	opts    engine.Options
	pending *pendingTxn
}

// NewCardStatement returns a card statement parser. The value owns
// per-document carry state; use one per document.
func NewCardStatement(opts engine.Options) *CardStatement {
	return &CardStatement{opts: opts}
}

func (p *CardStatement) FormatName() string {
	return "FAB credit card statement"
}

var (
	cardRowPattern = regexp.MustCompile(
		`^(` + dateToken + `) (.+?) (` + amountToken + `)( CR)?$`,
	)
	cardRowStartPattern = regexp.MustCompile(
		`^(` + dateToken + `) (.+)$`,
	)
	cardRowTailPattern = regexp.MustCompile(
		`^(.*?)\s*(` + amountToken + `)( CR)?$`,
	)

	// Masked card numbers like "XXXX XXXX XXXX 1234"; the visible last four
	// digits identify the card.
	cardNumberPattern = regexp.MustCompile(`(?i)\b[X*]{4}[ -][X*]{4}[ -][X*]{4}[ -](\d{4})\b`)
	cardStatementDate = regexp.MustCompile(`(?i)STATEMENT DATE\s*:?\s*(` + dateToken + `)`)
)

var cardNameLabels = []string{"CARDHOLDER NAME", "CARD MEMBER", "CARDHOLDER"}

type cardRow struct {
	dateText string
	desc     string
	amount   decimal.Decimal
	credit   bool
	partial  bool
	tail     bool
}

func (p *CardStatement) rowMatchers() []engine.Matcher[cardRow] {
	return []engine.Matcher[cardRow]{
		{Name: "full-row", Match: func(line string) (cardRow, bool) {
			m := cardRowPattern.FindStringSubmatch(line)
			if m == nil {
				return cardRow{}, false
			}
			amount, err := parseAmount(m[3])
			if err != nil {
				return cardRow{}, false
			}
			return cardRow{dateText: m[1], desc: strings.TrimSpace(m[2]), amount: amount, credit: m[4] != ""}, true
		}},
		{Name: "row-start", Match: func(line string) (cardRow, bool) {
			m := cardRowStartPattern.FindStringSubmatch(line)
			if m == nil {
				return cardRow{}, false
			}
			return cardRow{dateText: m[1], desc: strings.TrimSpace(m[2]), partial: true}, true
		}},
		{Name: "amount-tail", Match: func(line string) (cardRow, bool) {
			m := cardRowTailPattern.FindStringSubmatch(line)
			if m == nil {
				return cardRow{}, false
			}
			amount, err := parseAmount(m[2])
			if err != nil {
				return cardRow{}, false
			}
			return cardRow{desc: strings.TrimSpace(m[1]), amount: amount, credit: m[3] != "", tail: true}, true
		}},
	}
}

// Parse runs the card plugin over the line sequence.
func (p *CardStatement) Parse(lines []string) (*models.Statement, error) {
	p.pending = nil
	statement := &models.Statement{Format: models.FormatCard}
	return engine.Run(lines, p.plugin(), p.opts, statement)
}

func (p *CardStatement) plugin() engine.Plugin[cardState, *models.Statement] {
	return engine.Plugin[cardState, *models.Statement]{
		Initial:    cardSearching,
		Terminal:   cardDone,
		Transition: p.transition,
		Action:     p.action,
		Keywords:   []string{"CREDIT CARD STATEMENT", "TOTAL OUTSTANDING"},
	}
}

func (p *CardStatement) transition(state cardState, line string, _ engine.Options) (cardState, error) {
	switch state {
	case cardSearching:
		if isCardTableHeader(line) {
			return cardTable, nil
		}
		return cardSearching, nil
	case cardTable:
		if isCardClosingLine(line) {
			return cardDone, nil
		}
		return cardTable, nil
	default:
		return state, nil
	}
}

func (p *CardStatement) action(state cardState, line string, st *models.Statement, opts engine.Options) (*models.Statement, error) {
	p.scanHeaderInfo(line, st, opts)

	if state != cardTable {
		return st, nil
	}

	if isCardSummaryLine(line) {
		p.pending = nil
		return st, nil
	}

	row, matcher, ok := engine.FirstMatch(p.rowMatchers(), line)
	if !ok {
		if p.pending != nil {
			p.pending.desc = append(p.pending.desc, line)
			p.pending.raw = append(p.pending.raw, line)
		}
		return st, nil
	}
	if opts.Trace {
		opts.Logger.Debug("card row", "matcher", matcher, "text", line)
	}

	switch {
	case row.partial:
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
		record(st, models.Transaction{
			Date:        p.pending.date,
			Amount:      row.amount,
			Description: strings.Join(desc, " "),
			Raw:         append(p.pending.raw, line),
		}, row.credit)
		p.pending = nil

	default:
		p.pending = nil
		date, err := parseDate(row.dateText, opts.YearPrefix)
		if err != nil {
			return st, nil
		}
		record(st, models.Transaction{
			Date:        date,
			Amount:      row.amount,
			Description: row.desc,
			Raw:         []string{line},
		}, row.credit)
	}
	return st, nil
}

// record stores a completed card transaction. The CR marker is
// authoritative: credits are income, everything else is a charge. Zero
// amounts are never recorded.
func record(st *models.Statement, t models.Transaction, credit bool) {
	if t.Amount.IsZero() {
		return
	}
	if credit {
		st.AddIncome(t)
	} else {
		st.AddExpense(t)
	}
}

func (p *CardStatement) scanHeaderInfo(line string, st *models.Statement, opts engine.Options) {
	if st.AccountSuffix == "" {
		if m := cardNumberPattern.FindStringSubmatch(line); m != nil {
			st.AccountSuffix = m[1]
		}
	}
	if st.HolderName == "" {
		if name := nameNearLabel(line, cardNameLabels); name != "" {
			st.HolderName = name
		}
	}
	if st.Period.To.IsZero() {
		if m := cardStatementDate.FindStringSubmatch(line); m != nil {
			if to, err := parseDate(m[1], opts.YearPrefix); err == nil {
				st.Period.To = to
			}
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

func isCardTableHeader(line string) bool {
	upper := strings.ToUpper(line)
	if strings.Contains(upper, "TRANSACTION DETAILS") {
		return true
	}
	return strings.Contains(upper, "DATE") &&
		strings.Contains(upper, "DESCRIPTION") &&
		strings.Contains(upper, "AMOUNT")
}

func isCardClosingLine(line string) bool {
	return hasKeyword(line, []string{"total outstanding", "closing balance", "end of statement"})
}

func isCardSummaryLine(line string) bool {
	return hasKeyword(line, []string{
		"total outstanding", "closing balance", "minimum payment",
		"previous balance", "payment due", "end of statement",
		"continued", "page ",
	})
}
