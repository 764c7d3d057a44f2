package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

func loadSession(t *testing.T, s *gameStack, userID string) *model.GameSession {
	t.Helper()
	var session model.GameSession
	if err := s.db.Where("user_id = ?", userID).First(&session).Error; err != nil {
		t.Fatalf("load session: %v", err)
	}
	return &session
}

func TestEnsureSessionDefaults(t *testing.T) {
	s := newGameStack(t, testStart)

	session, err := s.game.EnsureSession("user-1")
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	if session.Status != shared.StatusNotStarted {
		t.Errorf("status = %s, want NOT_STARTED", session.Status)
	}
	if session.TimeAcceleration != 20 {
		t.Errorf("acceleration = %d, want 20", session.TimeAcceleration)
	}
	if session.DailySalesTarget != 40 {
		t.Errorf("daily sales target = %d, want 40", session.DailySalesTarget)
	}
	wantStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !session.CurrentGameDate.Equal(wantStart) {
		t.Errorf("current game date = %v, want %v", session.CurrentGameDate, wantStart)
	}
	if !session.GameEndDate.Equal(wantStart.AddDate(0, 0, 365)) {
		t.Errorf("end date = %v, want one year out", session.GameEndDate)
	}

	// Idempotent.
	again, err := s.game.EnsureSession("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != session.ID {
		t.Error("EnsureSession created a second session")
	}
}

func TestTickNoOpsWhenNotActive(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	if _, err := s.ledger.EnsureBalance("user-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.game.EnsureSession("user-1"); err != nil {
		t.Fatal(err)
	}

	s.clock.Advance(100 * time.Second)
	resp, err := s.game.Tick("user-1")
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if resp.DaysPassed != 0 {
		t.Errorf("days passed = %d, want 0 for NOT_STARTED session", resp.DaysPassed)
	}

	session := loadSession(t, s, "user-1")
	if !session.CurrentGameDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("game date moved on inactive session: %v", session.CurrentGameDate)
	}
}

func TestTickAdvancesWholeDays(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	// 65 real seconds at 20s/day: 3 whole days plus a 5s remainder.
	s.clock.Advance(65 * time.Second)
	resp, err := s.game.Tick("user-1")
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if resp.DaysPassed != 3 {
		t.Errorf("days passed = %d, want 3", resp.DaysPassed)
	}

	session := loadSession(t, s, "user-1")
	wantDate := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	if !session.CurrentGameDate.Equal(wantDate) {
		t.Errorf("current game date = %v, want %v", session.CurrentGameDate, wantDate)
	}
	if session.DaysSurvived != 3 {
		t.Errorf("days survived = %d, want 3", session.DaysSurvived)
	}
	if session.Status != shared.StatusActive {
		t.Errorf("status = %s, want ACTIVE", session.Status)
	}

	// Each consumed day left one aggregated income transaction behind.
	var bulkTx int64
	if err := s.db.Model(&model.Transaction{}).
		Where("user_id = ? AND description LIKE ?", "user-1", "Vendas automáticas%").
		Count(&bulkTx).Error; err != nil {
		t.Fatal(err)
	}
	if bulkTx != 3 {
		t.Errorf("bulk day transactions = %d, want 3", bulkTx)
	}

	// Every bulk sale shows up on the realtime feed too.
	var sales int64
	if err := s.db.Model(&model.ProductStockHistory{}).
		Where("operation = ?", shared.OpSale).Count(&sales).Error; err != nil {
		t.Fatal(err)
	}
	var realtime int64
	if err := s.db.Model(&model.RealtimeSale{}).Count(&realtime).Error; err != nil {
		t.Fatal(err)
	}
	if realtime == 0 || realtime != sales {
		t.Errorf("realtime sales = %d, want %d (one per sale)", realtime, sales)
	}

	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.GreaterThan(shared.StartingBalance) {
		t.Errorf("balance = %s, want above starting after three days of sales", balance.CurrentBalance)
	}
}

func TestTickKeepsIntraDayRemainder(t *testing.T) {
	s := newGameStack(t, testStart)
	s.startGame(t, "user-1")
	before := loadSession(t, s, "user-1")

	s.clock.Advance(65 * time.Second)
	if _, err := s.game.Tick("user-1"); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	session := loadSession(t, s, "user-1")
	want := before.LastUpdateTime.Add(60 * time.Second)
	if !session.LastUpdateTime.Equal(want) {
		t.Errorf("last update time = %v, want %v (remainder preserved)", session.LastUpdateTime, want)
	}
}

func TestTickDripsIntraDaySales(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	// Half a game day: expected sales 40*0.5=20, capped per tick.
	s.clock.Advance(10 * time.Second)
	resp, err := s.game.Tick("user-1")
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if resp.DaysPassed != 0 {
		t.Errorf("days passed = %d, want 0", resp.DaysPassed)
	}

	session := loadSession(t, s, "user-1")
	if session.CurrentDaySalesCount != 3 {
		t.Errorf("current day sales count = %d, want 3 (capped)", session.CurrentDaySalesCount)
	}

	var realtime int64
	if err := s.db.Model(&model.RealtimeSale{}).Count(&realtime).Error; err != nil {
		t.Fatal(err)
	}
	if realtime != 3 {
		t.Errorf("realtime sale rows = %d, want 3", realtime)
	}
}

func TestTickIgnoresSubSecondElapsed(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	s.clock.Advance(500 * time.Millisecond)
	resp, err := s.game.Tick("user-1")
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if resp.DaysPassed != 0 {
		t.Errorf("days passed = %d, want 0", resp.DaysPassed)
	}

	session := loadSession(t, s, "user-1")
	if session.CurrentDaySalesCount != 0 {
		t.Errorf("sales count = %d, want 0 for a sub-second tick", session.CurrentDaySalesCount)
	}
	var realtime int64
	if err := s.db.Model(&model.RealtimeSale{}).Count(&realtime).Error; err != nil {
		t.Fatal(err)
	}
	if realtime != 0 {
		t.Errorf("realtime sales = %d, want 0", realtime)
	}
}

func TestTickCompletesCampaign(t *testing.T) {
	s := newGameStack(t, testStart)
	s.startGame(t, "user-1")

	session := loadSession(t, s, "user-1")
	session.GameEndDate = session.GameStartDate.AddDate(0, 0, 2)
	if err := s.db.Save(session).Error; err != nil {
		t.Fatal(err)
	}

	s.clock.Advance(100 * time.Second) // 5 game days, campaign lasts 2
	if _, err := s.game.Tick("user-1"); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	session = loadSession(t, s, "user-1")
	if session.Status != shared.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", session.Status)
	}

	// A finished game refuses to start again.
	_, err := s.game.StartGame("user-1")
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 400 {
		t.Fatalf("StartGame on completed session: err = %v, want 400", err)
	}
}

func TestPauseAndResume(t *testing.T) {
	s := newGameStack(t, testStart)
	s.startGame(t, "user-1")

	if _, err := s.game.PauseGame("user-1"); err != nil {
		t.Fatalf("PauseGame: %v", err)
	}
	if session := loadSession(t, s, "user-1"); session.Status != shared.StatusPaused {
		t.Fatalf("status = %s, want PAUSED", session.Status)
	}

	// Pausing twice is an error.
	if _, err := s.game.PauseGame("user-1"); err == nil {
		t.Error("second pause accepted")
	}

	// Time spent paused never reaches the game.
	s.clock.Advance(500 * time.Second)
	if _, err := s.game.ResumeGame("user-1"); err != nil {
		t.Fatalf("ResumeGame: %v", err)
	}
	resp, err := s.game.Tick("user-1")
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if resp.DaysPassed != 0 {
		t.Errorf("days passed after resume = %d, want 0", resp.DaysPassed)
	}

	session := loadSession(t, s, "user-1")
	if !session.CurrentGameDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("game date moved while paused: %v", session.CurrentGameDate)
	}

	// Resume only applies to paused sessions.
	if _, err := s.game.ResumeGame("user-1"); err == nil {
		t.Error("resume on active session accepted")
	}
}

func TestResetGame(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	s.clock.Advance(65 * time.Second)
	if _, err := s.game.Tick("user-1"); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	s.clock.Advance(time.Hour)
	session, err := s.game.ResetGame("user-1")
	if err != nil {
		t.Fatalf("ResetGame: %v", err)
	}

	if session.Status != shared.StatusActive {
		t.Errorf("status = %s, want ACTIVE", session.Status)
	}
	if session.DaysSurvived != 0 || session.CurrentDaySalesCount != 0 {
		t.Errorf("counters not reset: survived=%d sales=%d", session.DaysSurvived, session.CurrentDaySalesCount)
	}
	if !session.CurrentGameDate.Equal(session.GameStartDate) {
		t.Errorf("current date %v != start date %v", session.CurrentGameDate, session.GameStartDate)
	}

	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.Equal(shared.StartingBalance) {
		t.Errorf("balance after reset = %s, want %s", balance.CurrentBalance, shared.StartingBalance)
	}

	var arroz model.Product
	if err := s.db.Where("name = ?", "Arroz Branco 5kg").First(&arroz).Error; err != nil {
		t.Fatal(err)
	}
	if arroz.CurrentStock != 50 {
		t.Errorf("Arroz stock after reset = %d, want 50", arroz.CurrentStock)
	}

	var leftovers int64
	if err := s.db.Model(&model.RealtimeSale{}).Count(&leftovers).Error; err != nil {
		t.Fatal(err)
	}
	if leftovers != 0 {
		t.Errorf("realtime sales after reset = %d, want 0", leftovers)
	}
	if err := s.db.Model(&model.Transaction{}).Count(&leftovers).Error; err != nil {
		t.Fatal(err)
	}
	if leftovers != 0 {
		t.Errorf("transactions after reset = %d, want 0", leftovers)
	}

	// The reset session plays on from today.
	if !balance.CurrentBalance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("balance = %s", balance.CurrentBalance)
	}
}
