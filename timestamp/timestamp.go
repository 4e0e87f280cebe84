// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package timestamp implements the timestamp grammars shared by document
// readers and writers.
//
// Three grammars are supported:
//
//	Format       | Wire form              | Example
//	------------ | ---------------------- | -----------------------------
//	EpochSeconds | seconds since epoch    | 1515531081.123
//	DateTime     | RFC 3339 date-time     | 2018-01-09T20:51:21Z
//	HTTPDate     | RFC 5322 IMF-fixdate   | Tue, 09 Jan 2018 20:51:21 GMT
//
// Formatting always produces UTC. DateTime output has no fractional seconds;
// EpochSeconds output keeps millisecond precision.
package timestamp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Format selects a timestamp grammar.
type Format byte

// Constants defining the valid Format values.
const (
	EpochSeconds Format = iota // seconds since 1970-01-01T00:00:00Z
	DateTime                   // RFC 3339 date-time
	HTTPDate                   // RFC 5322 IMF-fixdate
)

var formatStr = [...]string{
	EpochSeconds: "epoch-seconds",
	DateTime:     "date-time",
	HTTPDate:     "http-date",
}

func (f Format) String() string {
	if int(f) >= len(formatStr) {
		return fmt.Sprintf("Format(%d)", f)
	}
	return formatStr[f]
}

const (
	dateTimeLayout = "2006-01-02T15:04:05Z"
	httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// httpDateLayouts are accepted when parsing an HTTPDate, in order.
var httpDateLayouts = []string{
	httpDateLayout,
	"Mon, 02 Jan 2006 15:04:05.999999999 GMT",
	time.RFC1123Z,
	time.RFC1123,
}

// ErrInvalid is reported for text that does not match the selected grammar.
var ErrInvalid = errors.New("invalid timestamp")

// FormatText renders t as text in the DateTime or HTTPDate grammar.
// It panics if f is EpochSeconds; use Epoch for that grammar.
func FormatText(f Format, t time.Time) string {
	t = t.UTC()
	switch f {
	case DateTime:
		return t.Format(dateTimeLayout)
	case HTTPDate:
		return t.Format(httpDateLayout)
	}
	panic(fmt.Sprintf("timestamp: %v is not a text format", f))
}

// ParseText parses s according to the grammar f. The EpochSeconds grammar
// accepts a decimal number.
func ParseText(f Format, s string) (time.Time, error) {
	switch f {
	case DateTime:
		// time.RFC3339 admits an optional fractional second when parsing.
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		return t.UTC(), nil
	case HTTPDate:
		s = strings.TrimSpace(s)
		for _, layout := range httpDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q is not an HTTP date", ErrInvalid, s)
	case EpochSeconds:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		return FromEpoch(v)
	}
	return time.Time{}, fmt.Errorf("unknown timestamp format %v", f)
}

// FromEpoch converts a number of seconds since the epoch into a time.
// Fractional seconds are rounded to the nearest millisecond.
func FromEpoch(secs float64) (time.Time, error) {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, fmt.Errorf("%w: non-finite epoch %v", ErrInvalid, secs)
	}
	whole, frac := math.Modf(secs)
	if whole > math.MaxInt64/2 || whole < math.MinInt64/2 {
		return time.Time{}, fmt.Errorf("%w: epoch %v out of range", ErrInvalid, secs)
	}
	ms := math.Round(frac * 1000)
	return time.Unix(int64(whole), int64(ms)*int64(time.Millisecond)).UTC(), nil
}

// FromEpochInt converts a whole number of seconds since the epoch to a time.
func FromEpochInt(secs int64) time.Time { return time.Unix(secs, 0).UTC() }

// Epoch reports t as seconds since the epoch. If t has no sub-second part,
// whole is true and secs is integral. Otherwise secs carries millisecond
// precision.
func Epoch(t time.Time) (secs float64, whole bool) {
	ms := t.UnixMilli()
	if ms%1000 == 0 {
		return float64(ms / 1000), true
	}
	return float64(ms) / 1000, false
}
