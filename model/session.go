package model

import "time"

// GameSession is the per-player state machine. One row per user; only ACTIVE
// sessions tick. Dates are game dates (date-only), timestamps are real time.
type GameSession struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"uniqueIndex;not null"`

	GameStartDate   time.Time `gorm:"type:date"`
	CurrentGameDate time.Time `gorm:"type:date"`
	GameEndDate     time.Time `gorm:"type:date"`

	SessionStartTime time.Time
	LastUpdateTime   time.Time

	Status string `gorm:"size:12;default:NOT_STARTED"`

	// TimeAcceleration is real seconds per game day.
	TimeAcceleration int `gorm:"default:20"`

	DailySalesTarget int  `gorm:"default:40"`
	AutoSalesEnabled bool `gorm:"default:true"`

	CurrentDaySalesCount int       `gorm:"default:0"`
	LastSalesResetDate   time.Time `gorm:"type:date"`

	TotalScore   int `gorm:"default:0"`
	DaysSurvived int `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameProgress is the fraction of the campaign already played, in percent.
func (s *GameSession) GameProgress() float64 {
	totalDays := s.GameEndDate.Sub(s.GameStartDate).Hours() / 24
	if totalDays <= 0 {
		return 0
	}
	currentDays := s.CurrentGameDate.Sub(s.GameStartDate).Hours() / 24
	progress := currentDays / totalDays * 100
	if progress > 100 {
		return 100
	}
	return progress
}

func (s *GameSession) DaysRemaining() int {
	remaining := int(s.GameEndDate.Sub(s.CurrentGameDate).Hours() / 24)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *GameSession) IsGameOver() bool {
	return s.Status == "COMPLETED" || s.Status == "FAILED"
}
