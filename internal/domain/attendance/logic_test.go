package attendance

import (
	"testing"
	"time"
)

func TestDayOfTruncatesToUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	ts := time.Date(2026, 3, 15, 2, 30, 0, 0, loc)

	day := DayOf(ts)
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Fatalf("expected %v, got %v", want, day)
	}
}

func TestDayOfIsIdempotent(t *testing.T) {
	ts := time.Date(2026, 1, 2, 23, 59, 59, 0, time.UTC)
	if !DayOf(DayOf(ts)).Equal(DayOf(ts)) {
		t.Fatal("expected DayOf to be idempotent")
	}
}

func TestValidateCheckOut(t *testing.T) {
	in := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	if err := ValidateCheckOut(in, in.Add(8*time.Hour)); err != nil {
		t.Fatalf("expected valid check-out, got %v", err)
	}
	if err := ValidateCheckOut(in, in); err != nil {
		t.Fatalf("expected same-instant check-out to be valid, got %v", err)
	}
	if err := ValidateCheckOut(in, in.Add(-time.Minute)); err != ErrCheckOutBeforeCheckIn {
		t.Fatalf("expected ErrCheckOutBeforeCheckIn, got %v", err)
	}
}

func TestPresenceRatio(t *testing.T) {
	if got := PresenceRatio(nil); got != 0 {
		t.Fatalf("expected 0 for empty window, got %v", got)
	}

	records := []Record{
		{Status: StatusPresent},
		{Status: StatusPresent},
		{Status: StatusSick},
		{Status: StatusAlpha},
	}
	if got := PresenceRatio(records); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestWorkedDuration(t *testing.T) {
	in := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	out := in.Add(7 * time.Hour)

	if got := WorkedDuration(Record{CheckInAt: &in, CheckOutAt: &out}); got != 7*time.Hour {
		t.Fatalf("expected 7h, got %v", got)
	}
	if got := WorkedDuration(Record{CheckInAt: &in}); got != 0 {
		t.Fatalf("expected 0 without check-out, got %v", got)
	}
	if got := WorkedDuration(Record{CheckInAt: &out, CheckOutAt: &in}); got != 0 {
		t.Fatalf("expected 0 for inverted pair, got %v", got)
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range Statuses {
		if !ValidStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidStatus("vacation") {
		t.Fatal("expected unknown status to be invalid")
	}
}
