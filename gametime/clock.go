// Package gametime maps elapsed wall time onto accelerated game time.
// One game day lasts a configurable number of real seconds; within a day,
// progress is projected onto the 16-hour business window [06:00, 22:00).
package gametime

import (
	"fmt"
	"math"
	"time"
)

const (
	// BusinessOpenHour and BusinessCloseHour bound the market's business
	// window in game hours. Sales outside the window still move stock but
	// emit no realtime event.
	BusinessOpenHour  = 6
	BusinessCloseHour = 22

	businessHours = BusinessCloseHour - BusinessOpenHour
)

// Clock abstracts wall time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// TimeOfDay is a clock-face time inside a game day.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ElapsedSeconds returns the real seconds between the session's last update
// and now. Never negative: a clock that appears to run backwards yields 0.
func ElapsedSeconds(lastUpdate, now time.Time) float64 {
	s := now.Sub(lastUpdate).Seconds()
	if s < 0 {
		return 0
	}
	return s
}

// FullDays returns how many whole game days fit in the elapsed real seconds.
func FullDays(elapsedSeconds float64, accelSecondsPerDay int) int {
	if accelSecondsPerDay <= 0 {
		return 0
	}
	return int(elapsedSeconds) / accelSecondsPerDay
}

// IntraDaySeconds returns the real seconds of the partially-elapsed day.
func IntraDaySeconds(elapsedSeconds float64, accelSecondsPerDay int) float64 {
	if accelSecondsPerDay <= 0 {
		return 0
	}
	return math.Mod(elapsedSeconds, float64(accelSecondsPerDay))
}

// DayProgress returns the fraction of the current game day already elapsed,
// always inside [0, 1).
func DayProgress(elapsedSeconds float64, accelSecondsPerDay int) float64 {
	if accelSecondsPerDay <= 0 {
		return 0
	}
	p := IntraDaySeconds(elapsedSeconds, accelSecondsPerDay) / float64(accelSecondsPerDay)
	if p >= 1 {
		p = math.Nextafter(1, 0)
	}
	return p
}

// TimeFromProgress projects day progress onto the business window. Progress 0
// maps to 06:00:00; values approaching 1 are clamped at 21:59:59 so the
// returned time never reaches the closing hour.
func TimeFromProgress(progress float64) TimeOfDay {
	if progress < 0 {
		progress = 0
	}

	totalSeconds := int(progress * businessHours * 3600)
	if totalSeconds >= businessHours*3600 {
		totalSeconds = businessHours*3600 - 1
	}

	return TimeOfDay{
		Hour:   BusinessOpenHour + totalSeconds/3600,
		Minute: (totalSeconds / 60) % 60,
		Second: totalSeconds % 60,
	}
}

// MarketOpen reports whether the market trades at the given game time.
func MarketOpen(t TimeOfDay) bool {
	return t.Hour >= BusinessOpenHour && t.Hour < BusinessCloseHour
}
