package core

import (
	"fmt"
	"strings"
)

// Separator is the canonical pair separator ("LTC_BTC").
const Separator = "_"

var symbolReplacer = strings.NewReplacer("/", Separator, "-", Separator)

// NormalizeSymbol converts an exchange-native pair string to the canonical
// upper-case underscore form: "ltc/btc" and "LTC-BTC" both become "LTC_BTC".
// A string that does not split into exactly two non-empty parts is a caller
// error and is surfaced rather than silently truncated.
func NormalizeSymbol(raw string) (string, error) {
	s := symbolReplacer.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	if _, _, err := SplitSymbol(s); err != nil {
		return "", err
	}
	return s, nil
}

// SplitSymbol splits a canonical symbol into its base and quote currencies.
func SplitSymbol(symbol string) (base, quote string, err error) {
	parts := strings.Split(symbol, Separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed market symbol %q", symbol)
	}
	return parts[0], parts[1], nil
}

// FormatSymbol renders a canonical symbol with an exchange's native
// separator. FormatSymbol(NormalizeSymbol(x), sep) round-trips for any valid
// pair string containing exactly one separator.
func FormatSymbol(symbol, sep string) (string, error) {
	base, quote, err := SplitSymbol(symbol)
	if err != nil {
		return "", err
	}
	return base + sep + quote, nil
}
