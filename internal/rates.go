package internal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Converted amounts are rounded half to even to this many places.
const resultPlaces = 2

type CurrencyRate struct {
	Code    CurrencyCode `json:"char_code"`
	Name    string       `json:"name"`
	Nominal int64        `json:"nominal"`
	// UnitRate is the price of one unit in RUB. It is already divided by
	// Nominal upstream.
	UnitRate decimal.Decimal `json:"unit_rate"`
	// TotalRate is the price of Nominal units in RUB, kept for display only.
	TotalRate decimal.Decimal `json:"total_rate"`
}

// RateSnapshot is one complete set of rates from a single fetch. It is
// read-only once built.
type RateSnapshot struct {
	Date  Date
	Rates []CurrencyRate

	index map[CurrencyCode]int
}

// NewRateSnapshot validates rates and builds the code index. Order is kept as
// given.
func NewRateSnapshot(date Date, rates []CurrencyRate) (*RateSnapshot, error) {
	index := make(map[CurrencyCode]int, len(rates))
	for i, r := range rates {
		if !r.Code.IsWellFormed() {
			return nil, &ParseError{Index: i, Field: "CharCode", Err: fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, r.Code.String())}
		}
		if r.Code.IsBase() {
			return nil, &ParseError{Index: i, Field: "CharCode", Err: fmt.Errorf("base currency %s listed as an entry", RUB)}
		}
		if _, dup := index[r.Code]; dup {
			return nil, &ParseError{Index: i, Field: "CharCode", Err: fmt.Errorf("duplicate code %s", r.Code)}
		}
		if !r.UnitRate.IsPositive() {
			return nil, &ParseError{Index: i, Field: "VunitRate", Err: fmt.Errorf("rate %s is not positive", r.UnitRate)}
		}
		index[r.Code] = i
	}

	return &RateSnapshot{Date: date, Rates: rates, index: index}, nil
}

func (s *RateSnapshot) Lookup(code CurrencyCode) (CurrencyRate, bool) {
	i, ok := s.index[code]
	if !ok {
		return CurrencyRate{}, false
	}
	return s.Rates[i], true
}

// UnitRate returns the RUB price of one unit of code. RUB itself is 1.
func (s *RateSnapshot) UnitRate(code CurrencyCode) (decimal.Decimal, error) {
	if code.IsBase() {
		return decimal.NewFromInt(1), nil
	}
	r, ok := s.Lookup(code)
	if !ok {
		return decimal.Decimal{}, &UnknownCurrencyError{Code: code}
	}
	return r.UnitRate, nil
}

type snapshotJSON struct {
	Date       Date           `json:"date"`
	Currencies []CurrencyRate `json:"currencies"`
}

func (s *RateSnapshot) MarshalJSON() ([]byte, error) {
	rates := s.Rates
	if rates == nil {
		rates = []CurrencyRate{}
	}
	return json.Marshal(snapshotJSON{Date: s.Date, Currencies: rates})
}

func (s *RateSnapshot) UnmarshalJSON(b []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	built, err := NewRateSnapshot(raw.Date, raw.Currencies)
	if err != nil {
		return err
	}
	*s = *built
	return nil
}

// Convert turns amount of from into to, going through RUB, and rounds the
// result to 2 places half to even.
func Convert(s *RateSnapshot, from, to CurrencyCode, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if s == nil {
		return decimal.Decimal{}, errors.New("no rates snapshot")
	}

	var result decimal.Decimal
	switch {
	// 1) RUB -> RUB
	case from.IsBase() && to.IsBase():
		result = amount

	// 2) RUB -> Any
	case from.IsBase():
		toRate, err := s.UnitRate(to)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return divRoundBank(amount, toRate, resultPlaces), nil

	// 3) Any -> RUB
	case to.IsBase():
		fromRate, err := s.UnitRate(from)
		if err != nil {
			return decimal.Decimal{}, err
		}
		result = amount.Mul(fromRate)

	// 4) Any -> Any (через RUB)
	default:
		fromRate, err := s.UnitRate(from)
		if err != nil {
			return decimal.Decimal{}, err
		}
		toRate, err := s.UnitRate(to)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return divRoundBank(amount.Mul(fromRate), toRate, resultPlaces), nil
	}

	return result.RoundBank(resultPlaces), nil
}

// divRoundBank divides exactly and rounds once, half to even, to places.
func divRoundBank(num, den decimal.Decimal, places int32) decimal.Decimal {
	q, r := num.QuoRem(den, places)
	if r.IsZero() {
		return q
	}

	// |r| < |den| * 10^-places; compare it against half of that.
	half := den.Abs().Mul(decimal.New(5, -places-1))
	cmp := r.Abs().Cmp(half)
	odd := q.Shift(places).Abs().BigInt().Bit(0) == 1
	if cmp < 0 || (cmp == 0 && !odd) {
		return q
	}

	step := decimal.New(1, -places)
	if num.Sign()*den.Sign() < 0 {
		return q.Sub(step)
	}
	return q.Add(step)
}
