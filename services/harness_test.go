package services

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeClock makes game time deterministic in tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// openTestDB opens a private in-memory sqlite database migrated to the full
// schema. Each test gets its own database, named after the test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// gameStack wires the game services against one test database, bypassing the
// service container. The rng is seeded so sale quantities are reproducible.
type gameStack struct {
	db      *gorm.DB
	clock   *fakeClock
	ledger  *LedgerService
	sales   *SalesService
	payroll *PayrollService
	game    *GameService
}

func newGameStack(t *testing.T, start time.Time) *gameStack {
	t.Helper()

	db := openTestDB(t)
	sqlSvc := &PostgresService{db: db}
	clock := &fakeClock{now: start}

	ledger := &LedgerService{sqlSvc: sqlSvc}
	sales := &SalesService{
		sqlSvc:    sqlSvc,
		ledgerSvc: ledger,
		rng:       rand.New(rand.NewSource(1)),
	}
	payroll := &PayrollService{sqlSvc: sqlSvc, ledgerSvc: ledger}
	game := &GameService{
		sqlSvc:     sqlSvc,
		ledgerSvc:  ledger,
		salesSvc:   sales,
		payrollSvc: payroll,
		clock:      clock,
	}

	return &gameStack{
		db:      db,
		clock:   clock,
		ledger:  ledger,
		sales:   sales,
		payroll: payroll,
		game:    game,
	}
}

func (s *gameStack) seedCatalog(t *testing.T) {
	t.Helper()
	if err := SeedCatalog(s.db); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

// startGame provisions balance and session for userID and activates the game.
func (s *gameStack) startGame(t *testing.T, userID string) {
	t.Helper()
	if _, err := s.ledger.EnsureBalance(userID); err != nil {
		t.Fatalf("ensure balance: %v", err)
	}
	if _, err := s.game.EnsureSession(userID); err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	if _, err := s.game.StartGame(userID); err != nil {
		t.Fatalf("start game: %v", err)
	}
}
