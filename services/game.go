package services

import (
	"errors"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/gametime"
	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

// campaignDays is how long one game runs, in game days.
const campaignDays = 365

// GameService drives each player's session state machine. Every effect of
// elapsed time funnels through Tick, which runs in one database transaction
// under a row lock on the session.
type GameService struct {
	context.DefaultService

	sqlSvc        *PostgresService
	ledgerSvc     *LedgerService
	salesSvc      *SalesService
	payrollSvc    *PayrollService
	monitoringSvc *MonitoringService

	clock gametime.Clock
}

const GAME_SVC = "game_svc"

func (svc GameService) Id() string {
	return GAME_SVC
}

func (svc *GameService) Configure(ctx *context.Context) error {
	svc.clock = gametime.RealClock{}
	return svc.DefaultService.Configure(ctx)
}

func (svc *GameService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.salesSvc = svc.Service(SALES_SVC).(*SalesService)
	svc.payrollSvc = svc.Service(PAYROLL_SVC).(*PayrollService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	if svc.clock == nil {
		svc.clock = gametime.RealClock{}
	}
	return nil
}

func gameDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EnsureSession returns the user's session, creating a NOT_STARTED one on
// first contact. Called at registration and defensively by session reads.
func (svc *GameService) EnsureSession(userID string) (*model.GameSession, error) {
	var session model.GameSession
	err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.HandleDBError(err)
	}

	now := svc.clock.Now()
	today := gameDate(now)
	session = model.GameSession{
		ID:                 uuid.New().String(),
		UserID:             userID,
		GameStartDate:      today,
		CurrentGameDate:    today,
		GameEndDate:        today.AddDate(0, 0, campaignDays),
		SessionStartTime:   now,
		LastUpdateTime:     now,
		Status:             shared.StatusNotStarted,
		TimeAcceleration:   20,
		DailySalesTarget:   40,
		AutoSalesEnabled:   true,
		LastSalesResetDate: today,
	}
	if err := svc.sqlSvc.Db().Create(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	log.WithFields(log.Fields{"user_id": userID}).Info("Created game session")
	return &session, nil
}

// StartGame begins (or resumes) the campaign. A finished game must be reset
// before it can be played again.
func (svc *GameService) StartGame(userID string) (*model.GameSession, error) {
	session, err := svc.EnsureSession(userID)
	if err != nil {
		return nil, err
	}

	if session.IsGameOver() {
		return nil, shared.NewBadRequestError(nil, "Jogo já finalizado. Reinicie para jogar novamente.")
	}
	if session.Status == shared.StatusActive {
		return session, nil
	}

	now := svc.clock.Now()
	if session.Status == shared.StatusNotStarted {
		session.SessionStartTime = now
	}
	session.Status = shared.StatusActive
	session.LastUpdateTime = now
	if session.LastSalesResetDate.IsZero() {
		session.LastSalesResetDate = session.CurrentGameDate
	}

	if err := svc.sqlSvc.Db().Save(session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	return session, nil
}

// PauseGame applies any pending game time, then freezes the clock.
func (svc *GameService) PauseGame(userID string) (*model.GameSession, error) {
	if _, err := svc.Tick(userID); err != nil {
		return nil, err
	}

	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if session.Status != shared.StatusActive {
		return nil, shared.NewBadRequestError(nil, "Jogo não está ativo")
	}

	session.Status = shared.StatusPaused
	session.LastUpdateTime = svc.clock.Now()
	if err := svc.sqlSvc.Db().Save(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	return &session, nil
}

// ResumeGame unfreezes a paused session. The paused span never counts as
// elapsed time because last_update_time restarts at now.
func (svc *GameService) ResumeGame(userID string) (*model.GameSession, error) {
	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if session.Status != shared.StatusPaused {
		return nil, shared.NewBadRequestError(nil, "Jogo não está pausado")
	}

	session.Status = shared.StatusActive
	session.LastUpdateTime = svc.clock.Now()
	if err := svc.sqlSvc.Db().Save(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	return &session, nil
}

// GetSession returns the session without advancing time.
func (svc *GameService) GetSession(userID string) (*model.GameSession, error) {
	return svc.EnsureSession(userID)
}

// Tick converts wall time elapsed since the last update into game time and
// applies every consequence: whole days become bulk sales and payroll, the
// partial day tops up the intra-day sales drip. Inactive sessions no-op.
func (svc *GameService) Tick(userID string) (*dto.UpdateTimeResponse, error) {
	now := svc.clock.Now()

	var session model.GameSession
	daysPassed := 0

	err := svc.sqlSvc.Db().Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).Where("user_id = ?", userID).First(&session).Error; err != nil {
			return err
		}
		if session.Status != shared.StatusActive {
			return nil
		}

		elapsed := gametime.ElapsedSeconds(session.LastUpdateTime, now)
		days := gametime.FullDays(elapsed, session.TimeAcceleration)
		timeOfDay := gametime.TimeFromProgress(
			gametime.DayProgress(elapsed, session.TimeAcceleration))

		if days > 0 {
			oldDate := session.CurrentGameDate

			if session.AutoSalesEnabled {
				for i := 1; i <= days; i++ {
					day := oldDate.AddDate(0, 0, i)
					if _, _, err := svc.salesSvc.GenerateBulkDay(tx, &session, day, timeOfDay); err != nil {
						return err
					}
				}
			}

			session.CurrentGameDate = oldDate.AddDate(0, 0, days)
			session.DaysSurvived += days
			session.CurrentDaySalesCount = 0
			session.LastSalesResetDate = session.CurrentGameDate
			// Keep the intra-day remainder: only the consumed whole days move
			// the reference point forward.
			session.LastUpdateTime = session.LastUpdateTime.Add(
				time.Duration(days*session.TimeAcceleration) * time.Second)
			daysPassed = days

			if !session.CurrentGameDate.Before(session.GameEndDate) {
				session.Status = shared.StatusCompleted
				log.WithFields(log.Fields{"user_id": userID}).Info("Game campaign completed")
			} else {
				// One payroll run per crossed month boundary, for the month
				// that just ended.
				for m := monthStart(oldDate).AddDate(0, 1, 0); !m.After(monthStart(session.CurrentGameDate)); m = m.AddDate(0, 1, 0) {
					if err := svc.payrollSvc.ProcessMonth(tx, userID, m.AddDate(0, -1, 0), session.CurrentGameDate); err != nil {
						return err
					}
				}
			}
		}

		if session.Status == shared.StatusActive && session.AutoSalesEnabled {
			remainder := gametime.ElapsedSeconds(session.LastUpdateTime, now)
			if remainder >= 1 {
				progress := gametime.DayProgress(remainder, session.TimeAcceleration)
				if _, err := svc.salesSvc.IntraDayTopUp(tx, &session, progress); err != nil {
					return err
				}
			}
		}

		return tx.Save(&session).Error
	})
	if err != nil {
		if _, ok := shared.GetAppError(err); ok {
			return nil, err
		}
		return nil, shared.HandleDBError(err)
	}

	if svc.monitoringSvc != nil {
		svc.monitoringSvc.TickProcessed()
	}

	return &dto.UpdateTimeResponse{
		Session:    dto.NewGameSessionResponse(&session),
		DaysPassed: daysPassed,
	}, nil
}

// resetStockBaseline puts every product back at its launch stock level.
var resetStockBaseline = map[string]int{
	"Arroz Branco 5kg":         50,
	"Feijão Preto 1kg":         30,
	"Macarrão Espaguete 500g":  40,
	"Coca-Cola 2L":             25,
	"Água Mineral 500ml":       60,
	"Detergente Neutro 500ml":  35,
	"Papel Higiênico 4 rolos":  20,
	"Carne Bovina Alcatra 1kg": 15,
	"Frango Inteiro 1kg":       20,
	"Pão Francês":              100,
	"Bolo de Chocolate":        8,
}

// ResetGame wipes the campaign: fresh dates, starting balance, baseline
// stock, empty histories. The session comes back ACTIVE.
func (svc *GameService) ResetGame(userID string) (*model.GameSession, error) {
	now := svc.clock.Now()
	today := gameDate(now)

	var session model.GameSession
	err := svc.sqlSvc.Db().Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).Where("user_id = ?", userID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFoundError(err, "Sessão de jogo não encontrada")
			}
			return err
		}

		session.GameStartDate = today
		session.CurrentGameDate = today
		session.GameEndDate = today.AddDate(0, 0, campaignDays)
		session.SessionStartTime = now
		session.LastUpdateTime = now
		session.Status = shared.StatusActive
		session.CurrentDaySalesCount = 0
		session.LastSalesResetDate = today
		session.TotalScore = 0
		session.DaysSurvived = 0
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		if err := svc.ledgerSvc.ResetForNewGame(tx, userID); err != nil {
			return err
		}

		if err := tx.Where("game_session_id = ?", session.ID).Delete(&model.RealtimeSale{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&model.ProductStockHistory{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&model.PayrollHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id IN (?)",
			tx.Model(&model.Employee{}).Select("id").Where("user_id = ?", userID)).
			Delete(&model.Payroll{}).Error; err != nil {
			return err
		}

		var products []model.Product
		if err := tx.Find(&products).Error; err != nil {
			return err
		}
		for i := range products {
			stock, ok := resetStockBaseline[products[i].Name]
			if !ok {
				stock = products[i].MaxStock / 2
				if stock < 10 {
					stock = 10
				}
			}
			if err := tx.Model(&model.Product{}).Where("id = ?", products[i].ID).
				Update("current_stock", stock).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if _, ok := shared.GetAppError(err); ok {
			return nil, err
		}
		return nil, shared.HandleDBError(err)
	}

	log.WithFields(log.Fields{"user_id": userID}).Info("Game reset")
	return &session, nil
}
