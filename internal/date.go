package internal

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

type Date struct{ time.Time }

const dateLayout = "2006-01-02"

// feedDateLayout is how the central bank writes ValCurs/@Date.
const feedDateLayout = "02.01.2006"

// ParseFeedDate accepts both the feed layout and ISO dates. Empty input gives
// the zero Date.
func ParseFeedDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}

	t, err := time.Parse(feedDateLayout, s)
	if err != nil {
		t, err = time.Parse(dateLayout, s)
		if err != nil {
			return Date{}, fmt.Errorf("parse date %q: %w", s, err)
		}
	}
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

// Display formats the date the way Russian users read it.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(feedDateLayout)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := ParseFeedDate(strings.Trim(string(b), "\""))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.Time.Format(dateLayout))), nil
}
