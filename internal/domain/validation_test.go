package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func line(key string, dir Direction, amount string) Line {
	return Line{AccountKey: key, Direction: dir, Amount: decimal.RequireFromString(amount)}
}

func TestValidateLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []Line
		rule  error
	}{
		{
			name: "balanced two lines",
			lines: []Line{
				line("treasury", DirectionDebit, "100.00"),
				line("user:0xabc", DirectionCredit, "100.00"),
			},
		},
		{
			name: "balanced multi line",
			lines: []Line{
				line("treasury", DirectionDebit, "100"),
				line("pool:rewards", DirectionCredit, "70"),
				line("revenue", DirectionCredit, "30"),
			},
		},
		{
			name: "zero amounts allowed",
			lines: []Line{
				line("a", DirectionDebit, "0"),
				line("b", DirectionCredit, "0"),
			},
		},
		{
			name: "difference within tolerance",
			lines: []Line{
				line("a", DirectionDebit, "10.0000005"),
				line("b", DirectionCredit, "10"),
			},
		},
		{
			name:  "no lines",
			lines: nil,
			rule:  ErrTooFewLines,
		},
		{
			name:  "single line",
			lines: []Line{line("a", DirectionDebit, "10")},
			rule:  ErrTooFewLines,
		},
		{
			name: "negative amount",
			lines: []Line{
				line("a", DirectionDebit, "-10"),
				line("b", DirectionCredit, "-10"),
			},
			rule: ErrNegativeAmount,
		},
		{
			name: "bad direction",
			lines: []Line{
				line("a", Direction("sideways"), "10"),
				line("b", DirectionCredit, "10"),
			},
			rule: ErrBadDirection,
		},
		{
			name: "unbalanced",
			lines: []Line{
				line("a", DirectionDebit, "50"),
				line("b", DirectionCredit, "40"),
			},
			rule: ErrUnbalanced,
		},
		{
			name: "difference beyond tolerance",
			lines: []Line{
				line("a", DirectionDebit, "10.000002"),
				line("b", DirectionCredit, "10"),
			},
			rule: ErrUnbalanced,
		},
		{
			name: "missing account key",
			lines: []Line{
				line(" ", DirectionDebit, "10"),
				line("b", DirectionCredit, "10"),
			},
			rule: ErrMissingAccountKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLines(tt.lines)
			if tt.rule == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.rule) {
				t.Fatalf("expected %v, got %v", tt.rule, err)
			}

			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateAccountKey(t *testing.T) {
	t.Parallel()

	if err := ValidateAccountKey("treasury"); err != nil {
		t.Fatalf("expected valid key, got %v", err)
	}

	err := ValidateAccountKey(strings.Repeat("k", MaxAccountKeyLength+1))
	if !errors.Is(err, ErrAccountKeyTooLong) {
		t.Fatalf("expected long key rejected as too long, got %v", err)
	}
	if errors.Is(err, ErrMissingAccountKey) {
		t.Fatalf("long key must not be reported as missing, got %v", err)
	}

	if err := ValidateAccountKey(strings.Repeat("k", MaxAccountKeyLength)); err != nil {
		t.Fatalf("expected key at the limit to be accepted, got %v", err)
	}

	if err := ValidateAccountKey("  "); !errors.Is(err, ErrMissingAccountKey) {
		t.Fatalf("expected blank key reported as missing, got %v", err)
	}
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	d, err := ParseDirection("credit")
	if err != nil || d != DirectionCredit {
		t.Fatalf("expected credit, got %q err=%v", d, err)
	}

	if _, err := ParseDirection("DEBIT"); !errors.Is(err, ErrBadDirection) {
		t.Fatalf("expected ErrBadDirection, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit capped at 1000, got %d", limit)
	}
}
