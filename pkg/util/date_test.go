package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}
func TestParseTimeDate(t *testing.T) {
    got, ok := ParseTime("2024-03-15")
    if !ok {
        t.Fatalf("expected ok")
    }
    if FormatDate(got) != "2024-03-15" {
        t.Fatalf("unexpected date %v", got)
    }
}

func TestTradingDay(t *testing.T) {
    // 2024-03-15 03:45 UTC is still the 14th in New York (UTC-4).
    ts := time.Date(2024, 3, 15, 3, 45, 0, 0, time.UTC).Unix()
    if got := FormatDate(TradingDay(ts, -4*3600)); got != "2024-03-14" {
        t.Fatalf("unexpected trading day %s", got)
    }
    // and already the 15th in Mumbai (UTC+5:30).
    if got := FormatDate(TradingDay(ts, 19800)); got != "2024-03-15" {
        t.Fatalf("unexpected trading day %s", got)
    }
}
