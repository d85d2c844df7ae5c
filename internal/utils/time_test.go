package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone Europe/London", timezone: "Europe/London", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation(%q) returned nil location", tt.timezone)
			}
			if ValidateTimezone(tt.timezone) == tt.wantErr {
				t.Errorf("ValidateTimezone(%q) disagrees with LoadLocation", tt.timezone)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		day     string
		wantErr bool
	}{
		{name: "valid", day: "2024-01-01", wantErr: false},
		{name: "leap day", day: "2024-02-29", wantErr: false},
		{name: "not a leap year", day: "2023-02-29", wantErr: true},
		{name: "slashes", day: "01/02/2024", wantErr: true},
		{name: "empty", day: "", wantErr: true},
		{name: "trailing time", day: "2024-01-01T10:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDay(tt.day, time.UTC)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDay(%q) error = %v, wantErr %v", tt.day, err, tt.wantErr)
			}
			if !tt.wantErr && FormatDay(got) != tt.day {
				t.Errorf("FormatDay(ParseDay(%q)) = %q", tt.day, FormatDay(got))
			}
		})
	}
}

func TestTrailingWindow(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	start, end := TrailingWindow(today, 7)
	if FormatDay(start) != "2024-03-04" {
		t.Errorf("start = %s, want 2024-03-04", FormatDay(start))
	}
	if FormatDay(end) != "2024-03-10" {
		t.Errorf("end = %s, want 2024-03-10", FormatDay(end))
	}

	start, _ = TrailingWindow(today, 30)
	if FormatDay(start) != "2024-02-10" {
		t.Errorf("30-day start = %s, want 2024-02-10", FormatDay(start))
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{day: "2024-01-01", want: "2024-01-01"}, // Monday
		{day: "2024-01-03", want: "2024-01-01"}, // Wednesday
		{day: "2024-01-07", want: "2024-01-01"}, // Sunday
		{day: "2024-01-08", want: "2024-01-08"}, // next Monday
		{day: "2024-03-01", want: "2024-02-26"}, // crosses month
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			day, err := ParseDay(tt.day, time.UTC)
			if err != nil {
				t.Fatalf("ParseDay() error = %v", err)
			}
			if got := FormatDay(WeekStart(day)); got != tt.want {
				t.Errorf("WeekStart(%s) = %s, want %s", tt.day, got, tt.want)
			}
		})
	}
}

func TestDaysInRange(t *testing.T) {
	start := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	days := DaysInRange(start, end)
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(days) != len(want) {
		t.Fatalf("len(days) = %d, want %d", len(days), len(want))
	}
	for i, d := range days {
		if FormatDay(d) != want[i] {
			t.Errorf("days[%d] = %s, want %s", i, FormatDay(d), want[i])
		}
	}

	if got := DaysInRange(end, start); len(got) != 0 {
		t.Errorf("reversed range returned %d days, want 0", len(got))
	}
}

func TestDaysInRangeAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	today := time.Date(2024, 3, 12, 9, 0, 0, 0, loc)
	start, end := TrailingWindow(today, 30)

	days := DaysInRange(start, end)
	if len(days) != 30 {
		t.Fatalf("len(days) = %d, want 30", len(days))
	}
	for _, d := range days {
		if d.Hour() != 0 {
			t.Errorf("day %s not at midnight: %v", FormatDay(d), d)
		}
	}
}
