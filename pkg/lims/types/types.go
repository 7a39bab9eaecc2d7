package types

import (
	"fmt"
	"strings"
	"time"
)

// FetchState describes how much of an entity's backing document is known locally.
// Overview and Details are independent bits.
type FetchState uint8

const (
	None              FetchState = 0
	Overview          FetchState = 1
	Details           FetchState = 2
	OverviewOrDetails FetchState = Overview | Details
)

// Satisfies reports whether any of the required bits are held.
func (fs FetchState) Satisfies(required FetchState) bool {
	return fs&required != 0
}

func (fs FetchState) String() string {
	switch fs {
	case None:
		return "none"
	case Overview:
		return "overview"
	case Details:
		return "details"
	case OverviewOrDetails:
		return "overview|details"
	}
	return fmt.Sprintf("fetchstate(%d)", uint8(fs))
}

// Date is a calendar date without time of day, encoded as YYYY-MM-DD.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const DateLayout string = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// Bag is an immutable snapshot of attribute values harvested from a listing node.
type Bag struct {
	values map[string]any
}

func NewBag(values map[string]any) *Bag {
	b := &Bag{values: make(map[string]any, len(values))}
	for k, v := range values {
		b.values[k] = v
	}
	return b
}

func (b *Bag) Get(name string) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.values[name]
	return v, ok
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.values)
}

// Merge returns a new bag holding the values of b overridden by those of other.
func (b *Bag) Merge(other *Bag) *Bag {
	merged := &Bag{values: map[string]any{}}
	for _, src := range []*Bag{b, other} {
		if src == nil {
			continue
		}
		for k, v := range src.values {
			merged.values[k] = v
		}
	}
	return merged
}
