package server

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

// TelegramWebhookHandler feeds bot updates into the command router. Always
// acks with 200 so Telegram does not retry; handler errors are handled as
// bot replies.
func (s *Server) TelegramWebhookHandler(c echo.Context) error {
	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		return c.NoContent(http.StatusOK)
	}
	s.botRouter.HandleUpdate(c.Request().Context(), update)
	return c.NoContent(http.StatusOK)
}
