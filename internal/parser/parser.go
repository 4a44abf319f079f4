// Package parser contains the format plugins that extract structured
// statements from reconstructed document lines. Each plugin supplies the
// transition/action pair driven by the engine; all regexes, date formats and
// classification keywords live here, never in the engine.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/finlens/statement-engine/internal/engine"
	"github.com/finlens/statement-engine/internal/models"
)

// Parser turns reconstructed document lines into a statement.
type Parser interface {
	// Parse consumes the full line sequence and returns the accumulated
	// statement. Lines that match no known pattern are skipped silently;
	// statement PDFs always contain non-transactional boilerplate.
	Parse(lines []string) (*models.Statement, error)
	// FormatName returns the human-readable format name.
	FormatName() string
}

// New returns a fresh parser for the given format. A parser value owns
// per-document carry state (the pending multi-line transaction), so one
// value serves one document; construct a new parser per Parse call when
// parsing concurrently.
func New(format models.FormatType, opts engine.Options) (Parser, error) {
	switch format {
	case models.FormatAccount:
		return NewAccountStatement(opts), nil
	case models.FormatCard:
		return NewCardStatement(opts), nil
	default:
		return nil, fmt.Errorf("unsupported statement format: %q", format)
	}
}

// Detect identifies the statement format from document content.
func Detect(lines []string) (models.FormatType, error) {
	combined := strings.ToLower(strings.Join(lines, "\n"))

	if hasKeyword(combined, []string{"credit card statement", "card number", "minimum payment", "total outstanding"}) {
		return models.FormatCard, nil
	}
	if hasKeyword(combined, []string{"account statement", "balance brought forward", "current account", "iban"}) {
		return models.FormatAccount, nil
	}

	return "", fmt.Errorf("could not detect statement format from content; specify it explicitly")
}

// pendingTxn is a transaction whose description spans multiple physical
// lines: started by a row that lacks the trailing amount and balance,
// extended by continuation lines, and resolved when a balance-bearing line
// arrives or dropped when a new transaction start forces early completion.
// It lives on the parser value so concurrent parses never share carry state.
type pendingTxn struct {
	date time.Time
	desc []string
	raw  []string
}
