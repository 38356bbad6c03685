package conversation

import (
	"sync"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
)

// State - состояние диалога с одним чатом
type State int

const (
	StateAwaitingMessage State = iota
	StateCategoryClarification
	StateNewCategoryName
	StateAskingPaymentMethod
	StateAskingConfirmation
	StateAskingCorrection
)

func (s State) String() string {
	switch s {
	case StateAwaitingMessage:
		return "awaiting_message"
	case StateCategoryClarification:
		return "category_clarification"
	case StateNewCategoryName:
		return "new_category_name"
	case StateAskingPaymentMethod:
		return "asking_payment_method"
	case StateAskingConfirmation:
		return "asking_confirmation"
	case StateAskingCorrection:
		return "asking_correction"
	default:
		return "unknown"
	}
}

// SubQuestion - дополнительный вопрос да/нет внутри исправления
type SubQuestion struct {
	CreateCategory string
}

// Session хранит состояние диалога и черновик транзакции одного чата
type Session struct {
	ChatID  int64
	State   State
	Draft   *model.Draft
	Pending *SubQuestion
}

// Reset возвращает сессию в режим ожидания нового сообщения
func (s *Session) Reset() {
	s.State = StateAwaitingMessage
	s.Draft = nil
	s.Pending = nil
}

func (s *Session) clone() *Session {
	c := *s
	c.Draft = s.Draft.Clone()
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	return &c
}

// SessionStore хранит сессии по идентификатору чата. Сессия одного чата
// изменяется только обработчиком его текущего сообщения.
type SessionStore interface {
	// Get возвращает сессию чата, создавая новую при первом обращении
	Get(chatID int64) *Session
	Save(session *Session)
	Delete(chatID int64)
}

// MemorySessionStore держит сессии в памяти процесса; при перезапуске они теряются
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]*Session)}
}

func (m *MemorySessionStore) Get(chatID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[chatID]; ok {
		return s.clone()
	}
	return &Session{ChatID: chatID, State: StateAwaitingMessage}
}

func (m *MemorySessionStore) Save(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ChatID] = session.clone()
}

func (m *MemorySessionStore) Delete(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

// Len возвращает число активных сессий
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
