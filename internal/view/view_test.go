package view

import (
	"testing"
	"time"
)

var endNanos = int(999 * time.Millisecond)

func TestComputeRange(t *testing.T) {
	loc := time.UTC
	ref := time.Date(2024, 3, 15, 13, 45, 12, 0, loc) // Friday

	tests := []struct {
		mode      Mode
		wantStart time.Time
		wantEnd   time.Time
	}{
		{Day, time.Date(2024, 3, 15, 0, 0, 0, 0, loc), time.Date(2024, 3, 15, 23, 59, 59, endNanos, loc)},
		{Week, time.Date(2024, 3, 10, 0, 0, 0, 0, loc), time.Date(2024, 3, 16, 23, 59, 59, endNanos, loc)},
		{Month, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), time.Date(2024, 3, 31, 23, 59, 59, endNanos, loc)},
		{Schedule, time.Date(2024, 3, 15, 0, 0, 0, 0, loc), time.Date(2024, 4, 14, 23, 59, 59, endNanos, loc)},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := ComputeRange(ref, tt.mode)
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", got.End, tt.wantEnd)
			}
		})
	}
}

func TestComputeRange_MonthLeapFebruary(t *testing.T) {
	got := ComputeRange(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), Month)
	if got.End.Day() != 29 || got.End.Month() != time.February {
		t.Errorf("end = %v, want Feb 29", got.End)
	}
}

func TestComputeRange_DayAndWeekProperties(t *testing.T) {
	start := time.Date(2023, 12, 20, 7, 30, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		d := start.AddDate(0, 0, i)

		r := ComputeRange(d, Day)
		if !SameDay(r.Start, d) || !SameDay(r.End, d) {
			t.Fatalf("day range for %v is %v..%v", d, r.Start, r.End)
		}
		if r.Start.Hour() != 0 || r.Start.Minute() != 0 || r.Start.Nanosecond() != 0 {
			t.Fatalf("day start not midnight: %v", r.Start)
		}
		if r.End.Hour() != 23 || r.End.Minute() != 59 || r.End.Second() != 59 || r.End.Nanosecond() != endNanos {
			t.Fatalf("day end not 23:59:59.999: %v", r.End)
		}

		w := ComputeRange(d, Week)
		if w.Start.Weekday() != time.Sunday {
			t.Fatalf("week start for %v is %v", d, w.Start.Weekday())
		}
		if w.End.Weekday() != time.Saturday {
			t.Fatalf("week end for %v is %v", d, w.End.Weekday())
		}
		if !w.Contains(d) {
			t.Fatalf("week range %v..%v does not contain %v", w.Start, w.End, d)
		}
		if w.Days() != 7 {
			t.Fatalf("week range covers %d days", w.Days())
		}
	}
}

func TestRangeWithLookahead(t *testing.T) {
	ref := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	got := RangeWithLookahead(ref, Schedule, 7)
	want := time.Date(2024, 1, 8, 23, 59, 59, endNanos, time.UTC)
	if !got.End.Equal(want) {
		t.Errorf("end = %v, want %v", got.End, want)
	}
}

func TestMonthGrid_March2024(t *testing.T) {
	cells := MonthGrid(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if len(cells) != GridCells {
		t.Fatalf("got %d cells, want %d", len(cells), GridCells)
	}

	for i := 0; i < 5; i++ {
		c := cells[i]
		if c.IsCurrentMonth || c.Date.Month() != time.February || c.Date.Day() != 25+i {
			t.Errorf("cell %d = %v (current=%v), want Feb %d padding", i, c.Date, c.IsCurrentMonth, 25+i)
		}
	}
	for i := 0; i < 31; i++ {
		c := cells[5+i]
		if !c.IsCurrentMonth || c.Date.Day() != i+1 {
			t.Errorf("cell %d = %v, want March %d", 5+i, c.Date, i+1)
		}
	}
	for i := 0; i < 6; i++ {
		c := cells[36+i]
		if c.IsCurrentMonth || c.Date.Month() != time.April || c.Date.Day() != i+1 {
			t.Errorf("cell %d = %v, want April %d padding", 36+i, c.Date, i+1)
		}
	}
}

func TestMonthGrid_Properties(t *testing.T) {
	for year := 2023; year <= 2026; year++ {
		for month := time.January; month <= time.December; month++ {
			ref := time.Date(year, month, 10, 0, 0, 0, 0, time.UTC)
			cells := MonthGrid(ref)
			if len(cells) != GridCells {
				t.Fatalf("%v: %d cells", ref, len(cells))
			}
			if cells[0].Date.Weekday() != time.Sunday {
				t.Fatalf("%v: grid starts on %v", ref, cells[0].Date.Weekday())
			}

			run, runs := 0, 0
			for i, c := range cells {
				if i > 0 && !cells[i-1].Date.AddDate(0, 0, 1).Equal(c.Date) {
					t.Fatalf("%v: cells %d and %d are not contiguous", ref, i-1, i)
				}
				if c.IsCurrentMonth {
					run++
					if i == 0 || !cells[i-1].IsCurrentMonth {
						runs++
					}
				}
			}
			if runs != 1 {
				t.Fatalf("%v: current month split into %d runs", ref, runs)
			}
			if want := DaysIn(year, month, time.UTC); run != want {
				t.Fatalf("%v: %d current-month cells, want %d", ref, run, want)
			}
		}
	}
}

func TestStep(t *testing.T) {
	ref := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		mode Mode
		n    int
		want time.Time
	}{
		{"day forward", Day, 1, time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC)},
		{"day back", Day, -1, time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)},
		{"week forward", Week, 1, time.Date(2024, 3, 22, 10, 0, 0, 0, time.UTC)},
		{"week back", Week, -1, time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)},
		{"month forward", Month, 1, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC)},
		{"month back across year", Month, -3, time.Date(2023, 12, 15, 10, 0, 0, 0, time.UTC)},
		{"schedule does not step", Schedule, 1, ref},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Step(ref, tt.mode, tt.n); !got.Equal(tt.want) {
				t.Errorf("Step = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStep_MonthClampsDay(t *testing.T) {
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	next := Next(jan31, Month)
	if next.Month() != time.February || next.Day() != 29 {
		t.Fatalf("next = %v, want Feb 29", next)
	}
	back := Previous(next, Month)
	if back.Month() != time.January {
		t.Fatalf("round trip landed in %v", back.Month())
	}

	for day := 1; day <= 28; day++ {
		d := time.Date(2023, 8, day, 0, 0, 0, 0, time.UTC)
		if got := Previous(Next(d, Month), Month); !got.Equal(d) {
			t.Errorf("round trip of %v = %v", d, got)
		}
	}
}

func TestWeekDays(t *testing.T) {
	days := WeekDays(time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC))
	if len(days) != 7 {
		t.Fatalf("got %d days", len(days))
	}
	if days[0].Day() != 10 || days[6].Day() != 16 {
		t.Errorf("week = %v..%v, want Mar 10..16", days[0], days[6])
	}
}

func TestTitleAndHourLabel(t *testing.T) {
	ref := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := Title(ref, Month); got != "March 2024" {
		t.Errorf("month title = %q", got)
	}
	if got := Title(ref, Week); got != "March 15, 2024" {
		t.Errorf("week title = %q", got)
	}

	labels := map[int]string{0: "12 AM", 1: "1 AM", 11: "11 AM", 12: "12 PM", 13: "1 PM", 23: "11 PM"}
	for h, want := range labels {
		if got := HourLabel(h); got != want {
			t.Errorf("HourLabel(%d) = %q, want %q", h, got, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Week "); err != nil || m != Week {
		t.Errorf("ParseMode(Week) = %q, %v", m, err)
	}
	if _, err := ParseMode("year"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
