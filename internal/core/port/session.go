package port

// SessionStore maps chat identities to logged-in user ids. Two states per
// chat: logged out (initial) and logged in. Lifetime is the process
// lifetime; there is no expiry and no persistence.
type SessionStore interface {
	Login(chatId int64, userId string)
	// Logout reports whether the chat was logged in.
	Logout(chatId int64) bool
	UserId(chatId int64) (string, bool)
	// ChatId is the reverse lookup used by notification dispatch.
	ChatId(userId string) (int64, bool)
}
