package main

import (
	"github.com/supermercado-sim/mercado_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title Mercado API
// @description Supermarket simulator backend: accelerated game time, automatic sales, inventory and payroll.
// @version 1.0
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.RedisService{},
		&services.MonitoringService{},
		&services.JWTService{},
		&services.LedgerService{},
		&services.SalesService{},
		&services.PayrollService{},
		&services.GameService{},
		&services.ProductService{},
		&services.EmployeeService{},
		&services.DashboardService{},
		&services.AuthService{},
		&services.RateLimitService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
