package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/jonas-oms/hygrotwin/internal/core/port"
	"github.com/jonas-oms/hygrotwin/internal/core/service"
)

// Handler processes one bot command and returns the reply text.
type Handler func(ctx context.Context, chatId int64, args []string) (string, error)

// Router dispatches incoming bot updates to command handlers. Commands are
// matched case-insensitively so /ON and /on behave alike.
type Router struct {
	store     port.DocumentStore
	sessions  port.SessionStore
	messenger port.Messenger
	devices   *service.DeviceControl
	logger    *zap.Logger
	handlers  map[string]Handler
}

func NewRouter(
	store port.DocumentStore,
	sessions port.SessionStore,
	messenger port.Messenger,
	devices *service.DeviceControl,
	logger *zap.Logger,
) *Router {
	r := &Router{
		store:     store,
		sessions:  sessions,
		messenger: messenger,
		devices:   devices,
		logger:    logger.With(zap.String("adapter", "telegram_router")),
	}
	r.handlers = map[string]Handler{
		"start":  r.handleStart,
		"help":   r.handleHelp,
		"login":  r.handleLogin,
		"logout": r.handleLogout,
		"on":     r.handleOn,
		"off":    r.handleOff,
		"rooms":  r.handleRooms,
	}
	return r
}

// HandleUpdate routes a single webhook update. Reply delivery errors are
// logged, never returned: the webhook must always ack to Telegram.
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	chatId := msg.Chat.ID

	var reply string
	if msg.IsCommand() {
		command := strings.ToLower(msg.Command())
		args := strings.Fields(msg.CommandArguments())
		handler, ok := r.handlers[command]
		if !ok {
			reply = "Unknown command. Send /help for the command list."
		} else {
			text, err := handler(ctx, chatId, args)
			if err != nil {
				r.logger.Warn("command failed",
					zap.String("command", command),
					zap.Int64("chat_id", chatId),
					zap.Error(err))
				reply = "Error: " + err.Error()
			} else {
				reply = text
			}
		}
	} else {
		// non-command text is echoed back, same as the unknown-command path
		reply = "I only understand commands. Send /help for the command list."
	}

	if err := r.messenger.SendText(ctx, chatId, reply); err != nil {
		r.logger.Error("reply delivery failed",
			zap.Int64("chat_id", chatId),
			zap.Error(err))
	}
}
