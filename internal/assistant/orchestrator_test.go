package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/jarvis-bot/internal/scheduler"
	"github.com/xaenox/jarvis-bot/internal/storage"
)

// completionStub fakes the chat-completion endpoint behind the
// go-openai client.
type completionStub struct {
	mu      sync.Mutex
	content string
	status  int
}

func (s *completionStub) set(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
	s.status = http.StatusOK
}

func (s *completionStub) fail(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *completionStub) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	content, status := s.content, s.status
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream error", "type": "server_error"},
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"model":   "openai/gpt-3.5-turbo",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *storage.MemoryStorage, *completionStub) {
	t.Helper()

	stub := &completionStub{status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(stub.handler))
	t.Cleanup(server.Close)

	store := storage.NewMemoryStorage()
	sched := scheduler.New(zap.NewNop())
	t.Cleanup(sched.Stop)

	dispatcher := NewDispatcher(store, sched, func(int64, string) {}, zap.NewNop())
	memory := NewConversationMemory(MemoryLimit)

	orch := NewOrchestrator("test-key", server.URL+"/v1", "openai/gpt-3.5-turbo",
		1000, 0.7, store, dispatcher, memory, zap.NewNop())
	return orch, store, stub
}

func TestRespondPlainText(t *testing.T) {
	orch, store, stub := newTestOrchestrator(t)
	ctx := context.Background()

	stub.set("سلام! چه کمکی از دستم برمی‌آید؟")
	reply := orch.Respond(ctx, testUser, "سلام")
	assert.Equal(t, "سلام! چه کمکی از دستم برمی‌آید؟", reply)

	// The exchange lands in memory and in the audit log
	history := orch.memory.History(testUser)
	require.Len(t, history, 2)
	assert.Equal(t, "سلام", history[0].Content)
	assert.Equal(t, reply, history[1].Content)

	summary, err := store.GetDailySummary(ctx, testUser, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AIExchanges)
}

func TestRespondDirectiveDispatches(t *testing.T) {
	orch, store, stub := newTestOrchestrator(t)
	ctx := context.Background()

	stub.set(`EXECUTE_FUNCTION: add_task | {"description": "x"}`)
	reply := orch.Respond(ctx, testUser, "یه وظیفه اضافه کن: x")
	assert.Equal(t, "✅ وظیفه اضافه شد: x", reply)

	tasks, err := store.ListPendingTasks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "x", tasks[0].Description)

	// Memory holds the dispatcher result, not the raw directive
	history := orch.memory.History(testUser)
	require.Len(t, history, 2)
	assert.Equal(t, reply, history[1].Content)
}

func TestRespondDirectiveBadPayload(t *testing.T) {
	orch, _, stub := newTestOrchestrator(t)

	stub.set("EXECUTE_FUNCTION: add_task | {broken")
	reply := orch.Respond(context.Background(), testUser, "hi")
	assert.Contains(t, reply, "❌ خطا در اجرای دستور")

	// Failures never touch conversation memory
	assert.Equal(t, 0, orch.memory.Len(testUser))
}

func TestRespondMemoryBound(t *testing.T) {
	orch, _, stub := newTestOrchestrator(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		stub.set(fmt.Sprintf("reply %d", i))
		orch.Respond(ctx, testUser, fmt.Sprintf("message %d", i))
	}

	history := orch.memory.History(testUser)
	require.Len(t, history, MemoryLimit)
	assert.Equal(t, "message 2", history[0].Content)
}

func TestRespondEndpointError(t *testing.T) {
	orch, _, stub := newTestOrchestrator(t)

	stub.fail(http.StatusInternalServerError)
	reply := orch.Respond(context.Background(), testUser, "hi")
	assert.Equal(t, "🚫 خطا در دریافت پاسخ AI: 500", reply)
	assert.Equal(t, 0, orch.memory.Len(testUser))
}

func TestRespondTimeoutMessage(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)

	reply := orch.completionError(context.DeadlineExceeded)
	assert.Equal(t, "⏱️ زمان انتظار تمام شد. لطفاً دوباره تلاش کنید.", reply)
}

func TestRespondUsesUserModel(t *testing.T) {
	orch, store, stub := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, store.SetAIModel(ctx, testUser, "anthropic/claude-3.5-sonnet"))
	assert.Equal(t, "anthropic/claude-3.5-sonnet", orch.userModel(ctx, testUser))

	// Default fallback when unset
	assert.Equal(t, "openai/gpt-3.5-turbo", orch.userModel(ctx, testUser+1))

	stub.set("ok")
	assert.Equal(t, "ok", orch.Respond(ctx, testUser, "hi"))
}
