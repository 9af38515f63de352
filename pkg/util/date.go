package util

import (
    "strconv"
    "time"
)

// ParseTime tries RFC3339, RFC3339Nano, YYYY-MM-DD and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(DateLayout, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

// DateLayout is the chart date format.
const DateLayout = "2006-01-02"

// TradingDay maps a unix timestamp to the exchange-local calendar day,
// returned as midnight UTC. gmtOffset is the exchange offset in seconds.
func TradingDay(ts, gmtOffset int64) time.Time {
    t := time.Unix(ts+gmtOffset, 0).UTC()
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
    return t.UTC().Format(DateLayout)
}
