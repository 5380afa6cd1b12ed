package internal

import (
	"bytes"
	"fmt"
	"strings"
)

type CurrencyCode string

// RUB is the base currency of the central bank feed. It is never an entry of a
// snapshot; every unit rate is denominated in it.
const RUB CurrencyCode = "RUB"

// NewCurrencyCode normalizes s to upper case and checks that it looks like an
// ISO 4217 alphabetic code. It does not check that the feed knows the code.
func NewCurrencyCode(s string) (CurrencyCode, error) {
	ccy := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !ccy.IsWellFormed() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, s)
	}
	return ccy, nil
}

func (c CurrencyCode) IsWellFormed() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func (c CurrencyCode) IsBase() bool { return c == RUB }

func (c CurrencyCode) String() string { return string(c) }

func (c CurrencyCode) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", c.String())), nil
}

func (c *CurrencyCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := strings.Trim(string(b), "\"")
	ccy, err := NewCurrencyCode(s)
	if err != nil {
		return err
	}
	*c = ccy
	return nil
}
