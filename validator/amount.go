package validator

import (
	"strings"

	"github.com/brc20x/indexer/chainerr"
)

// ParseAmount converts a decimal-string amount into integer base units,
// accepting at most `decimals` fractional digits and rejecting anything
// that is not the one canonical textual form for that value: a leading '-',
// scientific notation ('e'/'E'), a leading zero in the integer part other
// than a bare "0", or more fractional digits than `decimals` allows are all
// rejected rather than normalized (spec.md §4.2).
func ParseAmount(raw string, decimals uint8) (uint64, *chainerr.Error) {
	if raw == "" {
		return 0, chainerr.New(chainerr.InvalidAmount, "empty amount")
	}
	if strings.ContainsAny(raw, "eE+-") {
		return 0, chainerr.New(chainerr.InvalidAmount, "amount %q is not a canonical decimal string", raw)
	}

	intPart, fracPart, hasDot := strings.Cut(raw, ".")
	if hasDot && fracPart == "" {
		return 0, chainerr.New(chainerr.InvalidAmount, "amount %q has a trailing decimal point", raw)
	}
	if intPart == "" {
		return 0, chainerr.New(chainerr.InvalidAmount, "amount %q is missing an integer part", raw)
	}
	if !allDigits(intPart) || (hasDot && !allDigits(fracPart)) {
		return 0, chainerr.New(chainerr.InvalidAmount, "amount %q contains non-digit characters", raw)
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return 0, chainerr.New(chainerr.InvalidAmount, "amount %q has a non-canonical leading zero", raw)
	}
	if len(fracPart) > int(decimals) {
		return 0, chainerr.New(chainerr.InvalidAmount, "amount %q has more fractional digits than decimals=%d allows", raw, decimals)
	}

	padded := fracPart + strings.Repeat("0", int(decimals)-len(fracPart))
	combined := intPart + padded
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		return 0, nil // exact zero, caller decides whether zero is meaningful here
	}

	value, err := parseUint(combined)
	if err != nil {
		return 0, chainerr.New(chainerr.InvalidAmount, "amount %q overflows base units", raw)
	}
	return value, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseUint is a small local decimal parser so the package does not need to
// pull in strconv.ParseUint just to re-validate digits it already checked.
func parseUint(digits string) (uint64, error) {
	var out uint64
	for _, r := range digits {
		d := uint64(r - '0')
		next := out*10 + d
		if next < out {
			return 0, chainerr.New(chainerr.InvalidAmount, "overflow")
		}
		out = next
	}
	return out, nil
}
