package gametime

import (
	"testing"
	"time"
)

func TestElapsedSeconds(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want float64
	}{
		{"one minute", base, base.Add(time.Minute), 60},
		{"zero", base, base, 0},
		{"clock went backwards", base, base.Add(-time.Minute), 0},
		{"sub second", base, base.Add(500 * time.Millisecond), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedSeconds(tt.last, tt.now); got != tt.want {
				t.Errorf("ElapsedSeconds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFullDays(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float64
		accel   int
		want    int
	}{
		{"nothing elapsed", 0, 20, 0},
		{"partial day", 19.9, 20, 0},
		{"exactly one day", 20, 20, 1},
		{"three days plus change", 65, 20, 3},
		{"zero acceleration", 100, 0, 0},
		{"negative acceleration", 100, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FullDays(tt.elapsed, tt.accel); got != tt.want {
				t.Errorf("FullDays(%v, %d) = %d, want %d", tt.elapsed, tt.accel, got, tt.want)
			}
		})
	}
}

func TestDayProgress(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float64
		accel   int
		want    float64
	}{
		{"start of day", 0, 20, 0},
		{"quarter day", 5, 20, 0.25},
		{"half day from second day", 30, 20, 0.5},
		{"zero acceleration", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayProgress(tt.elapsed, tt.accel); got != tt.want {
				t.Errorf("DayProgress(%v, %d) = %v, want %v", tt.elapsed, tt.accel, got, tt.want)
			}
		})
	}
}

func TestDayProgressNeverReachesOne(t *testing.T) {
	if got := DayProgress(19.999999999, 20); got >= 1 {
		t.Errorf("DayProgress() = %v, want < 1", got)
	}
}

func TestTimeFromProgress(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		want     string
	}{
		{"opening", 0, "06:00:00"},
		{"quarter", 0.25, "10:00:00"},
		{"half", 0.5, "14:00:00"},
		{"three quarters", 0.75, "18:00:00"},
		{"clamped before close", 1, "21:59:59"},
		{"over one clamps too", 1.5, "21:59:59"},
		{"negative clamps to open", -0.5, "06:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeFromProgress(tt.progress).String(); got != tt.want {
				t.Errorf("TimeFromProgress(%v) = %s, want %s", tt.progress, got, tt.want)
			}
		})
	}
}

func TestMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		at   TimeOfDay
		want bool
	}{
		{"opening hour", TimeOfDay{Hour: 6}, true},
		{"mid afternoon", TimeOfDay{Hour: 14, Minute: 30}, true},
		{"last trading second", TimeOfDay{Hour: 21, Minute: 59, Second: 59}, true},
		{"closing hour", TimeOfDay{Hour: 22}, false},
		{"before opening", TimeOfDay{Hour: 5, Minute: 59}, false},
		{"midnight", TimeOfDay{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketOpen(tt.at); got != tt.want {
				t.Errorf("MarketOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestProgressRoundTripStaysInsideBusinessWindow(t *testing.T) {
	for p := 0.0; p < 1.0; p += 0.01 {
		at := TimeFromProgress(p)
		if !MarketOpen(at) {
			t.Fatalf("TimeFromProgress(%v) = %s falls outside the business window", p, at)
		}
	}
}
