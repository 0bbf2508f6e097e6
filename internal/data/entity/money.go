package entity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in minor units (cents). Every amount in the system is
// kept at two decimal places; inputs with more precision are rounded half-up.
type Money int64

var (
	ErrInvalidMoney  = errors.New("invalid money amount")
	ErrMoneyOverflow = errors.New("money amount overflow")
)

// ParseMoney parses a decimal string such as "120", "99.5" or "10.005".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidMoney
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	// first two fractional digits are cents, the third decides rounding
	padded := frac + "000"
	cents, _ := strconv.ParseInt(padded[:2], 10, 64)

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (math.MaxInt64-cents)/100 {
		return 0, fmt.Errorf("%w: %q", ErrMoneyOverflow, s)
	}
	total := units*100 + cents
	if padded[2] >= '5' {
		if total == math.MaxInt64 {
			return 0, fmt.Errorf("%w: %q", ErrMoneyOverflow, s)
		}
		total++
	}

	if negative {
		total = -total
	}
	return Money(total), nil
}

// MustParseMoney is ParseMoney for constants; it panics on bad input.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// MulInt multiplies the amount by n, failing instead of wrapping around.
func (m Money) MulInt(n int) (Money, error) {
	if n == 0 || m == 0 {
		return 0, nil
	}
	result := int64(m) * int64(n)
	if result/int64(n) != int64(m) {
		return 0, ErrMoneyOverflow
	}
	return Money(result), nil
}

func (m Money) Cents() int64 {
	return int64(m)
}

func (m Money) IsNegative() bool {
	return m < 0
}

func (m Money) String() string {
	// uint64 holds the magnitude of math.MinInt64 too
	v := uint64(m)
	sign := ""
	if m < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
