package sheet

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errEmptyAmount       = errors.New("empty amount")
	errThousandSeparator = errors.New("'.' must separate groups of three digits")
)

// ParseAmount reads an Argentine-formatted amount and rounds it half up to
// whole pesos: "35.000" -> 35000, "$ 1.234,50" -> 1235, "-500" -> -500.
func ParseAmount(s string) (int64, error) {
	if !validGrouping(s) {
		return 0, errThousandSeparator
	}

	clean := strings.NewReplacer("$", "", " ", "", "\u00a0", "", ".", "").Replace(s)
	clean = strings.ReplaceAll(clean, ",", ".")

	if clean == "" || clean == "-" {
		return 0, errEmptyAmount
	}

	// Spreadsheets write negatives as "(500)".
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = "-" + strings.Trim(clean, "()")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Round(0).IntPart(), nil
}

// validGrouping reports whether every '.' in s is followed by exactly three
// digits, so "35.5" or "1,234.50" are rejected instead of misread.
func validGrouping(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}

		if i+3 >= len(s) {
			return false
		}

		for j := i + 1; j <= i+3; j++ {
			if !isDigit(s[j]) {
				return false
			}
		}

		if i+4 < len(s) && isDigit(s[i+4]) {
			return false
		}
	}

	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
