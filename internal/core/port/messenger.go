package port

import "context"

// Messenger sends outbound text through the bot's chat API.
type Messenger interface {
	SendText(ctx context.Context, chatId int64, text string) error
}
