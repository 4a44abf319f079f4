package parser

import (
	"testing"

	"github.com/finlens/statement-engine/internal/engine"
	"github.com/finlens/statement-engine/internal/models"
)

func TestNewReturnsParserPerFormat(t *testing.T) {
	cases := []struct {
		format models.FormatType
		name   string
	}{
		{models.FormatAccount, "FAB account statement"},
		{models.FormatCard, "FAB credit card statement"},
	}

	for _, tc := range cases {
		p, err := New(tc.format, engine.Options{})
		if err != nil {
			t.Fatalf("New(%q): unexpected error: %v", tc.format, err)
		}
		if p.FormatName() != tc.name {
			t.Errorf("New(%q): got %q, want %q", tc.format, p.FormatName(), tc.name)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New("barclays", engine.Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDetectAccountStatement(t *testing.T) {
	format, err := Detect(accountFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != models.FormatAccount {
		t.Errorf("got %q, want %q", format, models.FormatAccount)
	}
}

func TestDetectCardStatement(t *testing.T) {
	format, err := Detect(cardFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != models.FormatCard {
		t.Errorf("got %q, want %q", format, models.FormatCard)
	}
}

func TestDetectUnknownContent(t *testing.T) {
	lines := []string{"completely unrelated document", "no recognizable markers"}
	if _, err := Detect(lines); err == nil {
		t.Error("expected detection error for unknown content")
	}
}
