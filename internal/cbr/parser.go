package cbr

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"currency-bot/internal"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

type valCurs struct {
	XMLName xml.Name `xml:"ValCurs"`
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

// Pointers tell an absent element from an empty one.
type valute struct {
	CharCode  *string `xml:"CharCode"`
	Name      *string `xml:"Name"`
	Nominal   *string `xml:"Nominal"`
	Value     *string `xml:"Value"`
	VunitRate *string `xml:"VunitRate"`
}

var errMissing = errors.New("missing")

// Parse turns a ValCurs document into a snapshot. Any bad element fails the
// whole document.
func Parse(raw []byte) (*internal.RateSnapshot, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charsetReader

	var doc valCurs
	if err := dec.Decode(&doc); err != nil {
		return nil, &internal.ParseError{Index: -1, Err: err}
	}

	date, err := internal.ParseFeedDate(doc.Date)
	if err != nil {
		return nil, &internal.ParseError{Index: -1, Field: "Date", Err: err}
	}

	if len(doc.Valutes) == 0 {
		return nil, &internal.ParseError{Index: -1, Err: errors.New("no Valute elements")}
	}

	rates := make([]internal.CurrencyRate, 0, len(doc.Valutes))
	for i, v := range doc.Valutes {
		r, err := v.toRate(i)
		if err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}

	return internal.NewRateSnapshot(date, rates)
}

func (v valute) toRate(i int) (internal.CurrencyRate, error) {
	fail := func(field string, err error) (internal.CurrencyRate, error) {
		return internal.CurrencyRate{}, &internal.ParseError{Index: i, Field: field, Err: err}
	}

	codeText, err := required(v.CharCode)
	if err != nil {
		return fail("CharCode", err)
	}
	code, err := internal.NewCurrencyCode(codeText)
	if err != nil {
		return fail("CharCode", err)
	}

	name, err := required(v.Name)
	if err != nil {
		return fail("Name", err)
	}

	nominalText, err := required(v.Nominal)
	if err != nil {
		return fail("Nominal", err)
	}
	nominal, err := strconv.ParseInt(nominalText, 10, 64)
	if err != nil {
		return fail("Nominal", err)
	}
	if nominal <= 0 {
		return fail("Nominal", fmt.Errorf("nominal %d is not positive", nominal))
	}

	unitRate, err := feedDecimal(v.VunitRate)
	if err != nil {
		return fail("VunitRate", err)
	}
	totalRate, err := feedDecimal(v.Value)
	if err != nil {
		return fail("Value", err)
	}

	return internal.CurrencyRate{
		Code:      code,
		Name:      name,
		Nominal:   nominal,
		UnitRate:  unitRate,
		TotalRate: totalRate,
	}, nil
}

func required(s *string) (string, error) {
	if s == nil {
		return "", errMissing
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return "", errMissing
	}
	return t, nil
}

// feedDecimal parses "90,1234" style numbers.
func feedDecimal(s *string) (decimal.Decimal, error) {
	t, err := required(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(t, ",", "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number %q", t)
	}
	return d, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	case "", "utf-8", "utf8":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
