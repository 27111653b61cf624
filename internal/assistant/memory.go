package assistant

import (
	"sync"

	"github.com/sashabaranov/go-openai"
)

// MemoryLimit caps per-user conversation memory at 3 exchanges
// (6 role/content entries), oldest dropped first.
const MemoryLimit = 6

// ConversationMemory is a process-lifetime, per-user log of recent
// message/response pairs used as context for the model. Never persisted.
type ConversationMemory struct {
	mu      sync.Mutex
	entries map[int64][]openai.ChatCompletionMessage
	max     int
}

func NewConversationMemory(max int) *ConversationMemory {
	return &ConversationMemory{
		entries: make(map[int64][]openai.ChatCompletionMessage),
		max:     max,
	}
}

// History returns a copy of the stored entries for the user, oldest
// first.
func (m *ConversationMemory) History(userID int64) []openai.ChatCompletionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.entries[userID]
	out := make([]openai.ChatCompletionMessage, len(entries))
	copy(out, entries)
	return out
}

// AppendExchange records one user message and the reply it produced,
// then trims to the configured cap.
func (m *ConversationMemory) AppendExchange(userID int64, message, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := append(m.entries[userID],
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
	)
	if len(entries) > m.max {
		entries = entries[len(entries)-m.max:]
	}
	m.entries[userID] = entries
}

// Len reports the number of stored entries for the user.
func (m *ConversationMemory) Len(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries[userID])
}

// Clear wipes the user's conversation memory.
func (m *ConversationMemory) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
}
