package handlers

import (
	"time"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/model"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	Me(userID string) (*dto.MeResponse, error)
}

type GameServiceInterface interface {
	GetSession(userID string) (*model.GameSession, error)
	StartGame(userID string) (*model.GameSession, error)
	PauseGame(userID string) (*model.GameSession, error)
	ResumeGame(userID string) (*model.GameSession, error)
	ResetGame(userID string) (*model.GameSession, error)
	Tick(userID string) (*dto.UpdateTimeResponse, error)
}

type ProductServiceInterface interface {
	ListProducts(categoryID string) ([]dto.ProductResponse, error)
	GetProduct(productID string) (*dto.ProductResponse, error)
	ListCategories() ([]model.ProductCategory, error)
	ListSuppliers() ([]model.Supplier, error)
	LowStockProducts() ([]dto.ProductResponse, error)
	OutOfStockProducts() ([]dto.ProductResponse, error)
	Purchase(userID, productID string, req dto.PurchaseRequest) (*dto.PurchaseResponse, error)
	RestockCost() (*dto.RestockCostResponse, error)
	RestockAll(userID string) (*dto.RestockAllResponse, error)
}

type SalesServiceInterface interface {
	SimulateSale(userID string, req dto.SimulateSaleRequest) (*dto.SimulateSaleResponse, error)
	SalesSummary(userID string) (*dto.SalesSummaryResponse, error)
	StockHistory(productID string, limit int) ([]dto.StockHistoryEntry, error)
}

type DashboardServiceInterface interface {
	DashboardData(userID string) (*dto.DashboardResponse, error)
	MonthlyProfits(userID string) (*dto.MonthlyProfitsResponse, error)
	Balance(userID string) (*dto.BalanceInfo, error)
}

type EmployeeServiceInterface interface {
	ListPositions() ([]dto.PositionResponse, error)
	ListEmployees(userID string, status string) ([]dto.EmployeeResponse, error)
	GetEmployee(userID, employeeID string) (*dto.EmployeeResponse, error)
	HireEmployee(userID string, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	UpdateEmployee(userID, employeeID string, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	TerminateEmployee(userID, employeeID string) (*dto.EmployeeResponse, error)
	ReactivateEmployee(userID, employeeID string) (*dto.EmployeeResponse, error)
	Summary(userID string) (*dto.EmployeeSummaryResponse, error)
}

type PayrollServiceInterface interface {
	RunMonth(userID string, month time.Time) (*dto.PayrollMonthResponse, error)
	PayrollsByMonth(userID string, month time.Time) (*dto.PayrollMonthResponse, error)
	MarkAsPaid(userID, payrollID string) (*dto.PayrollResponse, error)
}
