package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/shared"
)

type SessionHandler struct {
	gameSvc GameServiceInterface
}

func NewSessionHandler(gameSvc GameServiceInterface) *SessionHandler {
	return &SessionHandler{gameSvc: gameSvc}
}

// @Summary Get game session
// @Description Return the player's session without advancing time
// @Tags session
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.GameSessionResponse}
// @Router /api/v1/game/session [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	session, err := h.gameSvc.GetSession(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, dto.NewGameSessionResponse(session))
}

// @Summary Start game
// @Description Activate the campaign clock; also resumes a paused game
// @Tags session
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.GameSessionResponse}
// @Router /api/v1/game/start [post]
func (h *SessionHandler) StartGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	session, err := h.gameSvc.StartGame(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Jogo iniciado", dto.NewGameSessionResponse(session))
}

// @Summary Pause game
// @Description Apply pending game time, then freeze the clock
// @Tags session
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.GameSessionResponse}
// @Router /api/v1/game/pause [post]
func (h *SessionHandler) PauseGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	session, err := h.gameSvc.PauseGame(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Jogo pausado", dto.NewGameSessionResponse(session))
}

// @Summary Resume game
// @Description Unfreeze a paused session; the paused span does not count
// @Tags session
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.GameSessionResponse}
// @Router /api/v1/game/resume [post]
func (h *SessionHandler) ResumeGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	session, err := h.gameSvc.ResumeGame(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Jogo retomado", dto.NewGameSessionResponse(session))
}

// @Summary Update game time
// @Description Convert elapsed wall time into game days and sales
// @Tags session
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.UpdateTimeResponse}
// @Router /api/v1/game/update_time [post]
func (h *SessionHandler) UpdateTime(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.gameSvc.Tick(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Reset game
// @Description Restart the campaign: fresh dates, starting balance, baseline stock
// @Tags session
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.GameSessionResponse}
// @Router /api/v1/game/reset [post]
func (h *SessionHandler) ResetGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	session, err := h.gameSvc.ResetGame(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Jogo reiniciado", dto.NewGameSessionResponse(session))
}
