package dto

import (
	"time"

	"github.com/supermercado-sim/mercado_api/model"
)

type GameSessionResponse struct {
	ID                   string    `json:"id"`
	Status               string    `json:"status"`
	GameStartDate        string    `json:"game_start_date"`
	CurrentGameDate      string    `json:"current_game_date"`
	GameEndDate          string    `json:"game_end_date"`
	SessionStartTime     time.Time `json:"session_start_time"`
	LastUpdateTime       time.Time `json:"last_update_time"`
	TimeAcceleration     int       `json:"time_acceleration"`
	DailySalesTarget     int       `json:"daily_sales_target"`
	AutoSalesEnabled     bool      `json:"auto_sales_enabled"`
	CurrentDaySalesCount int       `json:"current_day_sales_count"`
	LastSalesResetDate   string    `json:"last_sales_reset_date"`
	TotalScore           int       `json:"total_score"`
	DaysSurvived         int       `json:"days_survived"`
	GameProgress         float64   `json:"game_progress"`
	DaysRemaining        int       `json:"days_remaining"`
}

const gameDateLayout = "2006-01-02"

func NewGameSessionResponse(s *model.GameSession) GameSessionResponse {
	return GameSessionResponse{
		ID:                   s.ID,
		Status:               s.Status,
		GameStartDate:        s.GameStartDate.Format(gameDateLayout),
		CurrentGameDate:      s.CurrentGameDate.Format(gameDateLayout),
		GameEndDate:          s.GameEndDate.Format(gameDateLayout),
		SessionStartTime:     s.SessionStartTime,
		LastUpdateTime:       s.LastUpdateTime,
		TimeAcceleration:     s.TimeAcceleration,
		DailySalesTarget:     s.DailySalesTarget,
		AutoSalesEnabled:     s.AutoSalesEnabled,
		CurrentDaySalesCount: s.CurrentDaySalesCount,
		LastSalesResetDate:   s.LastSalesResetDate.Format(gameDateLayout),
		TotalScore:           s.TotalScore,
		DaysSurvived:         s.DaysSurvived,
		GameProgress:         s.GameProgress(),
		DaysRemaining:        s.DaysRemaining(),
	}
}

type UpdateTimeResponse struct {
	Session    GameSessionResponse `json:"session"`
	DaysPassed int                 `json:"days_passed"`
}
