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

func TestParseTimeCalendarLayouts(t *testing.T) {
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-10-10", "2024-10-10 00:00:00", "2024-10-10T00:00:00", "10/10/2024"} {
		got, ok := ParseTime(s)
		if !ok {
			t.Fatalf("expected ok for %q", s)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: unexpected time %v", s, got)
		}
	}
	if _, ok := ParseTime("yesterday"); ok {
		t.Fatalf("expected failure")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" TLT, ,GDX,")
	if len(got) != 2 || got[0] != "TLT" || got[1] != "GDX" {
		t.Fatalf("unexpected %v", got)
	}
	if SplitList("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("42", 1); got != 42 {
		t.Fatalf("unexpected %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("unexpected %d", got)
	}
}
