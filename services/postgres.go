package services

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/supermercado-sim/mercado_api/model"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "mercado_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Error),
			TranslateError: true,
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	if err = Migrate(ds.db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	if err = SeedCatalog(ds.db); err != nil {
		log.Printf("Failed to seed initial data: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// Migrate creates or updates the schema for every model the game touches.
// Shared with the sqlite-backed test harness.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},

		// Game session
		&model.GameSession{},

		// Inventory
		&model.ProductCategory{},
		&model.Supplier{},
		&model.Product{},
		&model.ProductStockHistory{},
		&model.RealtimeSale{},

		// Finance
		&model.UserBalance{},
		&model.BalanceHistory{},
		&model.Category{},
		&model.Transaction{},

		// Staff
		&model.EmployeePosition{},
		&model.Employee{},
		&model.Payroll{},
		&model.PayrollHistory{},
	)
}

// withRowLock adds SELECT ... FOR UPDATE on dialects that support it.
// SQLite serializes writers already, so the clause is skipped there.
func withRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

type catalogProduct struct {
	name          string
	description   string
	category      string
	supplier      string
	purchasePrice string
	salePrice     string
	currentStock  int
	minStock      int
	maxStock      int
	shelfLifeDays int
}

// SeedCatalog inserts the default categories, suppliers, products and
// employee positions. Idempotent: it only runs when the tables are empty.
func SeedCatalog(db *gorm.DB) error {
	if err := seedProducts(db); err != nil {
		return err
	}
	return seedPositions(db)
}

func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []model.ProductCategory{
		{Name: "Alimentos Básicos", Description: "Arroz, feijão, macarrão e outros alimentos essenciais", Icon: "🍚", Color: "#F59E0B", IsActive: true},
		{Name: "Bebidas", Description: "Refrigerantes, sucos, água e outras bebidas", Icon: "🥤", Color: "#3B82F6", IsActive: true},
		{Name: "Limpeza", Description: "Produtos de limpeza e higiene doméstica", Icon: "🧽", Color: "#10B981", IsActive: true},
		{Name: "Carnes e Aves", Description: "Carnes bovinas, suínas, aves e derivados", Icon: "🥩", Color: "#EF4444", IsActive: true},
		{Name: "Padaria", Description: "Pães, bolos e produtos de panificação", Icon: "🍞", Color: "#D97706", IsActive: true},
	}
	categoryIDs := map[string]string{}
	for i := range categories {
		categories[i].ID = uuid.New().String()
		if err := db.Create(&categories[i]).Error; err != nil {
			return err
		}
		categoryIDs[categories[i].Name] = categories[i].ID
	}

	suppliers := []model.Supplier{
		{Name: "Distribuidora Central", ContactPerson: "João Silva", Email: "joao@distribuidoracentral.com.br", Phone: "(11) 3456-7890", DeliveryTimeDays: 2, MinimumOrderValue: decimal.NewFromInt(500), ReliabilityScore: decimal.RequireFromString("4.5"), IsActive: true},
		{Name: "Atacadão do Sul", ContactPerson: "Maria Santos", Email: "maria@atacadaodosul.com.br", Phone: "(11) 2345-6789", DeliveryTimeDays: 1, MinimumOrderValue: decimal.NewFromInt(300), ReliabilityScore: decimal.RequireFromString("4.8"), IsActive: true},
		{Name: "Frigorífico Bom Corte", ContactPerson: "Pedro Oliveira", Email: "pedro@bomcorte.com.br", Phone: "(11) 4567-8901", DeliveryTimeDays: 1, MinimumOrderValue: decimal.NewFromInt(800), ReliabilityScore: decimal.RequireFromString("4.2"), IsActive: true},
	}
	supplierIDs := map[string]string{}
	for i := range suppliers {
		suppliers[i].ID = uuid.New().String()
		if err := db.Create(&suppliers[i]).Error; err != nil {
			return err
		}
		supplierIDs[suppliers[i].Name] = suppliers[i].ID
	}

	products := []catalogProduct{
		{"Arroz Branco 5kg", "Arroz branco tipo 1, pacote de 5kg", "Alimentos Básicos", "Distribuidora Central", "12.50", "18.90", 50, 10, 100, 365},
		{"Feijão Preto 1kg", "Feijão preto tipo 1, pacote de 1kg", "Alimentos Básicos", "Distribuidora Central", "6.80", "9.90", 30, 8, 80, 365},
		{"Macarrão Espaguete 500g", "Macarrão espaguete, pacote de 500g", "Alimentos Básicos", "Distribuidora Central", "2.90", "4.50", 40, 10, 90, 720},
		{"Coca-Cola 2L", "Refrigerante Coca-Cola, garrafa de 2 litros", "Bebidas", "Atacadão do Sul", "5.20", "8.90", 25, 6, 60, 180},
		{"Água Mineral 500ml", "Água mineral sem gás, garrafa de 500ml", "Bebidas", "Atacadão do Sul", "0.80", "2.00", 60, 15, 120, 365},
		{"Detergente Neutro 500ml", "Detergente líquido neutro, frasco de 500ml", "Limpeza", "Atacadão do Sul", "1.50", "2.80", 35, 8, 70, 1080},
		{"Papel Higiênico 4 rolos", "Papel higiênico folha dupla, pacote com 4 rolos", "Limpeza", "Atacadão do Sul", "4.20", "7.50", 20, 5, 50, 1080},
		{"Carne Bovina Alcatra 1kg", "Alcatra bovina fresca, por quilograma", "Carnes e Aves", "Frigorífico Bom Corte", "28.00", "42.00", 15, 3, 30, 5},
		{"Frango Inteiro 1kg", "Frango inteiro congelado, por quilograma", "Carnes e Aves", "Frigorífico Bom Corte", "8.50", "13.90", 20, 5, 40, 90},
		{"Pão Francês", "Pão francês fresco, unidade", "Padaria", "Distribuidora Central", "0.35", "0.75", 100, 20, 200, 1},
		{"Bolo de Chocolate", "Bolo de chocolate caseiro, unidade", "Padaria", "Distribuidora Central", "12.00", "22.00", 8, 2, 15, 3},
	}
	for _, p := range products {
		row := model.Product{
			ID:            uuid.New().String(),
			Name:          p.name,
			Description:   p.description,
			CategoryID:    categoryIDs[p.category],
			SupplierID:    supplierIDs[p.supplier],
			PurchasePrice: decimal.RequireFromString(p.purchasePrice),
			SalePrice:     decimal.RequireFromString(p.salePrice),
			CurrentStock:  p.currentStock,
			MinStock:      p.minStock,
			MaxStock:      p.maxStock,
			ShelfLifeDays: p.shelfLifeDays,
			IsActive:      true,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d product categories, %d suppliers, %d products",
		len(categories), len(suppliers), len(products))
	return nil
}

func seedPositions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.EmployeePosition{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	positions := []struct {
		name       string
		department string
		base       int64
		min        int64
		max        int64
	}{
		{"Caixa", "Atendimento", 1500, 1200, 2000},
		{"Vendedor", "Vendas", 1400, 1100, 1800},
		{"Repositor", "Estoque", 1300, 1000, 1700},
		{"Gerente", "Administração", 3000, 2500, 4000},
		{"Auxiliar de Limpeza", "Limpeza", 1000, 800, 1300},
		{"Segurança", "Segurança", 1600, 1300, 2100},
	}
	for _, p := range positions {
		row := model.EmployeePosition{
			ID:         uuid.New().String(),
			Name:       p.name,
			Department: p.department,
			BaseSalary: decimal.NewFromInt(p.base),
			MinSalary:  decimal.NewFromInt(p.min),
			MaxSalary:  decimal.NewFromInt(p.max),
			IsActive:   true,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d employee positions", len(positions))
	return nil
}
