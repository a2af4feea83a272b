package schedule

import (
	"testing"
	"time"
)

func TestTimeOfDayOn(t *testing.T) {
	date := time.Date(2024, time.June, 3, 17, 45, 12, 99, time.UTC)
	got := TimeOfDay{Hour: 8, Minute: 30}.On(date)
	want := time.Date(2024, time.June, 3, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("On = %v, want %v", got, want)
	}
}

func TestTimeOfDayValid(t *testing.T) {
	cases := []struct {
		tod  TimeOfDay
		want bool
	}{
		{TimeOfDay{0, 0}, true},
		{TimeOfDay{23, 59}, true},
		{TimeOfDay{24, 0}, false},
		{TimeOfDay{-1, 30}, false},
		{TimeOfDay{12, 60}, false},
	}
	for _, c := range cases {
		if got := c.tod.Valid(); got != c.want {
			t.Errorf("%02d:%02d valid = %v, want %v", c.tod.Hour, c.tod.Minute, got, c.want)
		}
	}
}

func TestTimetableValid(t *testing.T) {
	tt := Timetable{
		Weekdays: []time.Weekday{time.Monday},
		Sailing:  TimeOfDay{8, 30},
		Crossing: 90 * time.Minute,
	}
	if !tt.Valid() {
		t.Error("complete timetable reported invalid")
	}
	if (Timetable{Sailing: TimeOfDay{8, 30}, Crossing: time.Hour}).Valid() {
		t.Error("timetable without weekdays reported valid")
	}
	if (Timetable{Weekdays: []time.Weekday{time.Monday}, Sailing: TimeOfDay{8, 30}}).Valid() {
		t.Error("timetable without crossing duration reported valid")
	}
}

func TestSailsOn(t *testing.T) {
	s := New("S001", "R001", "F001",
		Timetable{
			Weekdays: []time.Weekday{time.Monday, time.Friday},
			Sailing:  TimeOfDay{8, 30},
			Crossing: 90 * time.Minute,
		},
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	)

	monday := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	tuesday := time.Date(2024, time.June, 4, 0, 0, 0, 0, time.UTC)
	julyMonday := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	beforeWindow := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)

	if !s.SailsOn(monday) {
		t.Error("no sailing on an in-window Monday")
	}
	if s.SailsOn(tuesday) {
		t.Error("sailing on a Tuesday the timetable skips")
	}
	if s.SailsOn(julyMonday) {
		t.Error("sailing after the validity window")
	}
	if s.SailsOn(beforeWindow) {
		t.Error("sailing before the validity window")
	}
}

func TestWithinWindowInclusive(t *testing.T) {
	s := New("S001", "R001", "F001", Timetable{},
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC))
	if !s.WithinWindow(s.ValidFrom) {
		t.Error("ValidFrom excluded from window")
	}
	if !s.WithinWindow(s.ValidTo) {
		t.Error("ValidTo excluded from window")
	}
}
