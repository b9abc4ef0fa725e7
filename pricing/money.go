package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Cents is an amount of US dollars in minor units.
type Cents int64

// Dollars converts whole dollars to Cents.
func Dollars(d int64) Cents { return Cents(d * 100) }

// Decimal renders the exact amount as "94.00".
func (c Cents) Decimal() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Display formats the amount for people, e.g. "$ 94.00".
func (c Cents) Display() string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprint(currency.Symbol(currency.USD.Amount(float64(c) / 100)))
}

// ParseCents reads "94", "94.5", "$1,094.00" style amounts.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	d, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("parse amount %q: want at most two decimals", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", s, err)
		}
	}
	if d < 0 || strings.HasPrefix(whole, "-") {
		return 0, fmt.Errorf("parse amount %q: negative", s)
	}
	return Cents(d*100 + cents), nil
}
