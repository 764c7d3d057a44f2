package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	_ "github.com/supermercado-sim/mercado_api/docs"
	"github.com/supermercado-sim/mercado_api/services/handlers"
	"github.com/supermercado-sim/mercado_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthService
	gameSvc       *GameService
	productSvc    *ProductService
	salesSvc      *SalesService
	dashboardSvc  *DashboardService
	employeeSvc   *EmployeeService
	payrollSvc    *PayrollService
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.gameSvc = svc.Service(GAME_SVC).(*GameService)
	svc.productSvc = svc.Service(PRODUCT_SVC).(*ProductService)
	svc.salesSvc = svc.Service(SALES_SVC).(*SalesService)
	svc.dashboardSvc = svc.Service(DASHBOARD_SVC).(*DashboardService)
	svc.employeeSvc = svc.Service(EMPLOYEE_SVC).(*EmployeeService)
	svc.payrollSvc = svc.Service(PAYROLL_SVC).(*PayrollService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		ErrorHandler: svc.errorHandler,
	})

	app.Use(recover.New())
	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	authHandler := handlers.NewAuthHandler(svc.authSvc)
	sessionHandler := handlers.NewSessionHandler(svc.gameSvc)
	productHandler := handlers.NewProductHandler(svc.productSvc)
	salesHandler := handlers.NewSalesHandler(svc.salesSvc)
	dashboardHandler := handlers.NewDashboardHandler(svc.dashboardSvc)
	employeeHandler := handlers.NewEmployeeHandler(svc.employeeSvc, svc.payrollSvc)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	v1.Post("/register", RateLimitMiddleware(svc.rateLimitSvc, "auth"), authHandler.Register)
	v1.Post("/login", RateLimitMiddleware(svc.rateLimitSvc, "auth"), authHandler.Login)

	authed := v1.Group("", svc.authSvc.RequiredAuth(), RateLimitMiddleware(svc.rateLimitSvc, "api"))
	authed.Get("/me", authHandler.Me)
	authed.Get("/balance", dashboardHandler.Balance)

	game := authed.Group("/game")
	game.Get("/session", sessionHandler.GetSession)
	game.Post("/start", sessionHandler.StartGame)
	game.Post("/pause", sessionHandler.PauseGame)
	game.Post("/resume", sessionHandler.ResumeGame)
	game.Post("/update_time", sessionHandler.UpdateTime)
	game.Post("/reset", sessionHandler.ResetGame)

	products := authed.Group("/products")
	products.Get("", productHandler.ListProducts)
	products.Get("/categories", productHandler.ListCategories)
	products.Get("/suppliers", productHandler.ListSuppliers)
	products.Get("/low_stock", productHandler.LowStock)
	products.Get("/out_of_stock", productHandler.OutOfStock)
	products.Get("/restock_cost", productHandler.RestockCost)
	products.Post("/restock_all", productHandler.RestockAll)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/:id/purchase", productHandler.Purchase)
	products.Get("/:id/stock_history", salesHandler.StockHistory)

	sales := authed.Group("/sales")
	sales.Post("/simulate_sale", salesHandler.SimulateSale)
	sales.Get("/summary", salesHandler.SalesSummary)

	dashboard := authed.Group("/dashboard")
	dashboard.Get("/data", dashboardHandler.DashboardData)
	dashboard.Get("/monthly_profits", dashboardHandler.MonthlyProfits)

	employees := authed.Group("/employees")
	employees.Get("/positions", employeeHandler.ListPositions)
	employees.Get("/summary", employeeHandler.Summary)
	employees.Get("", employeeHandler.ListEmployees)
	employees.Post("", employeeHandler.HireEmployee)
	employees.Get("/:id", employeeHandler.GetEmployee)
	employees.Put("/:id", employeeHandler.UpdateEmployee)
	employees.Post("/:id/terminate", employeeHandler.TerminateEmployee)
	employees.Post("/:id/reactivate", employeeHandler.ReactivateEmployee)

	payrolls := authed.Group("/payrolls")
	payrolls.Get("/by_month", employeeHandler.PayrollsByMonth)
	payrolls.Post("/run", employeeHandler.RunPayroll)
	payrolls.Post("/:id/mark_as_paid", employeeHandler.MarkAsPaid)

	svc.server = app

	log.Printf("HTTP server listening on :%d", svc.port)
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// errorHandler renders AppErrors with their status and data; anything else
// becomes an opaque 500.
func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseAppError(c, appErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseError(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled error")
	return shared.ResponseError(c, fiber.StatusInternalServerError, "Internal server error", nil)
}

// @Summary Ping
// @Description Health check
// @Tags health
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")
	return shared.ResponseOK(c, "pong")
}
