// Package stats rolls orders up into revenue buckets by day, ISO week or month.
package stats

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// Period is the bucketing granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value to a Period. Empty means day; anything else
// unknown is rejected.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return "", fmt.Errorf("%w: period must be one of day, week, month", model.ErrInvalidInput)
	}
}

// BucketKey identifies a bucket. Which fields are meaningful depends on Period:
// day uses Year/Month/Day, week uses Year/Week (ISO), month uses Year/Month.
type BucketKey struct {
	Period Period
	Year   int
	Month  time.Month
	Day    int
	Week   int
}

// KeyOf returns the bucket key of t for period p, evaluated in UTC.
func KeyOf(p Period, t time.Time) BucketKey {
	t = t.UTC()
	switch p {
	case PeriodWeek:
		y, w := t.ISOWeek()
		return BucketKey{Period: p, Year: y, Week: w}
	case PeriodMonth:
		return BucketKey{Period: p, Year: t.Year(), Month: t.Month()}
	default:
		return BucketKey{Period: PeriodDay, Year: t.Year(), Month: t.Month(), Day: t.Day()}
	}
}

// Start returns the first instant of the bucket.
func (k BucketKey) Start() time.Time {
	switch k.Period {
	case PeriodWeek:
		// January 4th is always in ISO week 1.
		jan4 := time.Date(k.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
		offset := (int(jan4.Weekday()) + 6) % 7
		monday := jan4.AddDate(0, 0, -offset)
		return monday.AddDate(0, 0, (k.Week-1)*7)
	case PeriodMonth:
		return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
	}
}

// Compare orders keys chronologically. Keys of different periods fall back to
// comparing their start instants.
func (k BucketKey) Compare(o BucketKey) int {
	if k.Period != o.Period {
		return k.Start().Compare(o.Start())
	}
	if c := cmp.Compare(k.Year, o.Year); c != 0 {
		return c
	}
	switch k.Period {
	case PeriodWeek:
		return cmp.Compare(k.Week, o.Week)
	case PeriodMonth:
		return cmp.Compare(k.Month, o.Month)
	default:
		if c := cmp.Compare(k.Month, o.Month); c != 0 {
			return c
		}
		return cmp.Compare(k.Day, o.Day)
	}
}

// String renders the key as 2024-05-03, 2024-W18 or 2024-05.
func (k BucketKey) String() string {
	switch k.Period {
	case PeriodWeek:
		return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
	case PeriodMonth:
		return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
	default:
		return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
	}
}

// Summary is a count/revenue/average triple.
type Summary struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

func (s *Summary) add(amount decimal.Decimal) {
	s.TotalOrders++
	s.TotalRevenue = s.TotalRevenue.Add(amount)
}

func (s *Summary) finish() {
	if s.TotalOrders == 0 {
		s.AverageOrderValue = decimal.Zero
		return
	}
	s.AverageOrderValue = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.TotalOrders)))
}

// Bucket is the rollup of one period.
type Bucket struct {
	Key   BucketKey `json:"-"`
	Label string    `json:"key"`
	Date  time.Time `json:"date"`
	Summary
}

// Report is the full statistics answer.
type Report struct {
	PeriodStats  []Bucket `json:"periodStats"`
	OverallStats Summary  `json:"overallStats"`
}

// Accumulator folds orders into buckets one at a time.
type Accumulator struct {
	period  Period
	buckets map[BucketKey]*Bucket
	overall Summary
}

// NewAccumulator returns an empty accumulator for period p.
func NewAccumulator(p Period) *Accumulator {
	if p == "" {
		p = PeriodDay
	}
	return &Accumulator{period: p, buckets: make(map[BucketKey]*Bucket)}
}

// Add records one order.
func (a *Accumulator) Add(createdAt time.Time, amount decimal.Decimal) {
	k := KeyOf(a.period, createdAt)
	b, ok := a.buckets[k]
	if !ok {
		b = &Bucket{Key: k, Label: k.String(), Date: k.Start()}
		a.buckets[k] = b
	}
	b.add(amount)
	a.overall.add(amount)
}

// Report returns the buckets in ascending order plus the overall summary.
func (a *Accumulator) Report() Report {
	out := make([]Bucket, 0, len(a.buckets))
	for _, b := range a.buckets {
		bb := *b
		bb.finish()
		out = append(out, bb)
	}
	slices.SortFunc(out, func(x, y Bucket) int { return x.Key.Compare(y.Key) })
	overall := a.overall
	overall.finish()
	return Report{PeriodStats: out, OverallStats: overall}
}

// Aggregate buckets orders by period.
func Aggregate(p Period, orders []model.Order) Report {
	acc := NewAccumulator(p)
	for _, o := range orders {
		acc.Add(o.CreatedAt, o.TotalAmount)
	}
	return acc.Report()
}
