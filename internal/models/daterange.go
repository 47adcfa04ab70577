package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/sosodev/duration"
)

// DateLayout is the calendar-date form accepted for range bounds.
const DateLayout = "2006-01-02"

// DateRange is the requested span of a series. Both bounds are inclusive.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// presets mirror the quick-pick ranges offered by the dashboard controls
var presets = map[string]time.Duration{
	"last-6-hours": 6 * time.Hour,
	"last-1-day":   24 * time.Hour,
	"last-7-days":  7 * 24 * time.Hour,
	"last-30-days": 30 * 24 * time.Hour,
}

// ParseDateRange parses both bounds. A bare date is read as midnight UTC;
// anything longer must be an ISO-8601 timestamp.
func ParseDateRange(from, to string) (DateRange, error) {
	start, err := parseBound("from", from)
	if err != nil {
		return DateRange{}, err
	}
	end, err := parseBound("to", to)
	if err != nil {
		return DateRange{}, err
	}

	r := DateRange{From: start, To: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func parseBound(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &ValidationError{Field: field, Message: "is required"}
	}

	if len(raw) == len(DateLayout) {
		t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", raw)}
		}
		return t, nil
	}

	t, err := iso8601.ParseString(raw)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("invalid ISO-8601 timestamp %q", raw)}
	}
	return t.UTC(), nil
}

// LastRange builds a lookback range ending at now. window is either a preset
// name (last-6-hours, last-1-day, last-7-days, last-30-days) or an ISO-8601
// duration such as P7D or PT12H. Both bounds are truncated to calendar dates.
func LastRange(now time.Time, window string) (DateRange, error) {
	span, ok := presets[window]
	if !ok {
		d, err := duration.Parse(window)
		if err != nil {
			return DateRange{}, &ValidationError{Field: "last", Message: fmt.Sprintf("unknown window %q", window)}
		}
		span = d.ToTimeDuration()
	}
	if span < 0 {
		return DateRange{}, &ValidationError{Field: "last", Message: "window must not be negative"}
	}

	now = now.UTC()
	return DateRange{
		From: truncateDate(now.Add(-span)),
		To:   truncateDate(now),
	}, nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate rejects ranges whose end precedes their start.
func (r DateRange) Validate() error {
	if r.To.Before(r.From) {
		return &InvalidRangeError{From: r.From, To: r.To}
	}
	return nil
}

// Duration returns the span between the bounds.
func (r DateRange) Duration() time.Duration {
	return r.To.Sub(r.From)
}

// DurationMillis returns the span in whole milliseconds.
func (r DateRange) DurationMillis() int64 {
	return r.To.UnixMilli() - r.From.UnixMilli()
}

// Hours returns the span in fractional hours.
func (r DateRange) Hours() float64 {
	return float64(r.DurationMillis()) / float64(time.Hour/time.Millisecond)
}

// Key is a stable string form of the range, used for caching.
func (r DateRange) Key() string {
	return r.From.UTC().Format(time.RFC3339Nano) + "/" + r.To.UTC().Format(time.RFC3339Nano)
}

func (r DateRange) String() string {
	return r.From.UTC().Format(time.RFC3339) + " to " + r.To.UTC().Format(time.RFC3339)
}
