package util

import (
	"reflect"
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

func TestParseTimeInLocalLayouts(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	got, ok := ParseTimeIn("2024-03-01 09:15", ist)
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 3, 1, 3, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got.UTC(), want)
	}

	if _, ok := ParseTimeIn("tomorrow", ist); ok {
		t.Fatalf("expected failure")
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2024, 3, 1, 9, 17, 31, 0, time.UTC)
	to := time.Date(2024, 3, 1, 15, 29, 59, 0, time.UTC)
	f, e := AlignFromTo(from, to, 5*time.Minute)
	if f.Minute() != 15 || f.Second() != 0 {
		t.Fatalf("unexpected from %v", f)
	}
	if e.Minute() != 25 {
		t.Fatalf("unexpected to %v", e)
	}
}

func TestDayBounds(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	start, end := DayBounds(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC), ist, 5*time.Minute)
	if start.Day() != 2 || start.Hour() != 0 {
		t.Fatalf("unexpected start %v", start)
	}
	if end.Sub(start) != 24*time.Hour-5*time.Minute {
		t.Fatalf("unexpected span %v", end.Sub(start))
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" Sun, moon ,,MARS ")
	if !reflect.DeepEqual(got, []string{"sun", "moon", "mars"}) {
		t.Fatalf("unexpected %v", got)
	}
	if SplitList("  ") != nil {
		t.Fatalf("expected nil")
	}
}
