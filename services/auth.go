package services

import (
	"errors"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

// AuthService handles registration and login. A new account comes with its
// starting balance and a NOT_STARTED game session, so the first dashboard
// load always has data.
type AuthService struct {
	context.DefaultService

	sqlSvc    *PostgresService
	jwtSvc    *JWTService
	ledgerSvc *LedgerService
	gameSvc   *GameService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.gameSvc = svc.Service(GAME_SVC).(*GameService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := svc.sqlSvc.Db().Model(&model.User{}).
		Where("email = ? OR username = ?", email, req.Username).
		Count(&count).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if count > 0 {
		return nil, shared.NewConflictError(nil, "Email ou nome de usuário já cadastrado")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	user := model.User{
		ID:       uuid.New().String(),
		Email:    email,
		Username: req.Username,
		Password: string(hashed),
	}
	if err := svc.sqlSvc.Db().Create(&user).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	if _, err := svc.ledgerSvc.EnsureBalance(user.ID); err != nil {
		return nil, err
	}
	if _, err := svc.gameSvc.EnsureSession(user.ID); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return &dto.RegisterResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(req.EmailOrUsername)

	var user model.User
	err := svc.sqlSvc.Db().
		Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(nil, "Credenciais inválidas")
		}
		return nil, shared.HandleDBError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(nil, "Credenciais inválidas")
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate token")
	}

	user.LastLogin = time.Now()
	if err := svc.sqlSvc.Db().Save(&user).Error; err != nil {
		log.WithError(err).Warn("Failed to record last login")
	}

	// Accounts created before these side tables existed still get them.
	if _, err := svc.ledgerSvc.EnsureBalance(user.ID); err != nil {
		return nil, err
	}
	if _, err := svc.gameSvc.EnsureSession(user.ID); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		UserID:    user.ID,
		Username:  user.Username,
		TokenPair: *tokens,
	}, nil
}

// RequiredAuth verifies the bearer token and stores the user id in locals
// under shared.UserID.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseError(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseError(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if userID == "" {
			return shared.ResponseError(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}

func (svc *AuthService) Me(userID string) (*dto.MeResponse, error) {
	var user model.User
	if err := svc.sqlSvc.Db().Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Usuário não encontrado")
		}
		return nil, shared.HandleDBError(err)
	}

	return &dto.MeResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}
