package units

import (
	"testing"
	"time"
)

func TestMinutes(t *testing.T) {
	tests := []struct {
		seconds int64
		want    float64
	}{
		{0, 0},
		{150, 2.5},
		{60, 1.0},
		{90, 1.5},
		{125, 2.1}, // 2.083 rounds to 2.1
		{3600, 60.0},
	}
	for _, tt := range tests {
		if got := Minutes(tt.seconds); got != tt.want {
			t.Errorf("Minutes(%d) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := FormatMinutes(150); got != "2.5" {
		t.Errorf("FormatMinutes(150) = %q, want 2.5", got)
	}
}

func TestFormatMeters(t *testing.T) {
	if got := FormatMeters(0.3); got != "0.30 m" {
		t.Errorf("FormatMeters(0.3) = %q", got)
	}
}

func TestFormatUnix(t *testing.T) {
	if got := FormatUnix(0, nil); got != "1970-01-01T00:00:00Z" {
		t.Errorf("FormatUnix(0, nil) = %q", got)
	}
	loc, err := LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	if got := FormatUnix(0, loc); got != "1969-12-31T19:00:00-05:00" {
		t.Errorf("FormatUnix(0, NY) = %q", got)
	}
}

func TestLoadLocation(t *testing.T) {
	if loc, err := LoadLocation(""); err != nil || loc != time.UTC {
		t.Errorf("empty tz: loc=%v err=%v, want UTC", loc, err)
	}
	if _, err := LoadLocation("Mars/Olympus_Mons"); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestIsTimezoneValid(t *testing.T) {
	if !IsTimezoneValid("Europe/Berlin") {
		t.Error("Europe/Berlin should be valid")
	}
	if IsTimezoneValid("") || IsTimezoneValid("not/a/zone") {
		t.Error("invalid zones accepted")
	}
}
