// Package validator implements the pure, I/O-free protocol rules (C3,
// spec.md §4.2): ticker syntax, amount parsing, and deploy/mint/transfer
// validation against the current block's state.View. Nothing here ever
// mutates state directly; callers (package opi's processors) turn a
// successful validation into state.Intermediate updates themselves.
package validator

import (
	"strings"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/model"
)

const (
	minTickerRunes = 1
	maxTickerRunes = 8
)

// isTickerRune reports whether r belongs to the ticker character class
// (spec.md §3: "limited alphanumeric/underscore").
func isTickerRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// NormalizeTicker trims surrounding whitespace and upper-cases raw, so
// tickers that differ only by case collide on the same storage key (spec.md
// §8: "a ticker deploy whose uppercased form is already deployed fails
// regardless of input casing"). It rejects empty, over-length, and
// non-alphanumeric/underscore tickers.
func NormalizeTicker(raw string) (model.Ticker, *chainerr.Error) {
	trimmed := strings.TrimSpace(raw)
	runes := []rune(trimmed)
	if len(runes) < minTickerRunes || len(runes) > maxTickerRunes {
		return "", chainerr.New(chainerr.InvalidTicker, "ticker length %d out of range [%d,%d]", len(runes), minTickerRunes, maxTickerRunes)
	}
	for _, r := range runes {
		if !isTickerRune(r) {
			return "", chainerr.New(chainerr.InvalidTicker, "ticker contains a character outside [A-Za-z0-9_]")
		}
	}
	return model.Ticker(strings.ToUpper(trimmed)), nil
}
