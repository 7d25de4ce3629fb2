package session

import (
	"sync"

	"github.com/jonas-oms/hygrotwin/internal/core/port"
)

// MemorySessionStore keeps chat sessions in process memory. Sessions do not
// survive a restart; users log in again via the bot.
type MemorySessionStore struct {
	mu       sync.RWMutex
	byChat   map[int64]string
	byUserId map[string]int64
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		byChat:   make(map[int64]string),
		byUserId: make(map[string]int64),
	}
}

func (s *MemorySessionStore) Login(chatId int64, userId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// a user moving to a new chat invalidates the old binding
	if oldUser, ok := s.byChat[chatId]; ok {
		delete(s.byUserId, oldUser)
	}
	if oldChat, ok := s.byUserId[userId]; ok {
		delete(s.byChat, oldChat)
	}
	s.byChat[chatId] = userId
	s.byUserId[userId] = chatId
}

func (s *MemorySessionStore) Logout(chatId int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	userId, ok := s.byChat[chatId]
	if !ok {
		return false
	}
	delete(s.byChat, chatId)
	delete(s.byUserId, userId)
	return true
}

func (s *MemorySessionStore) UserId(chatId int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userId, ok := s.byChat[chatId]
	return userId, ok
}

func (s *MemorySessionStore) ChatId(userId string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chatId, ok := s.byUserId[userId]
	return chatId, ok
}

var _ port.SessionStore = (*MemorySessionStore)(nil)
