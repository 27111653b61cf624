package assistant

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/jarvis-bot/internal/models"
	"github.com/xaenox/jarvis-bot/internal/scheduler"
	"github.com/xaenox/jarvis-bot/internal/storage"
)

const testUser int64 = 42

type capturedNotification struct {
	userID int64
	text   string
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *storage.MemoryStorage, chan capturedNotification) {
	t.Helper()

	store := storage.NewMemoryStorage()
	sched := scheduler.New(zap.NewNop())
	t.Cleanup(sched.Stop)

	notifications := make(chan capturedNotification, 8)
	notify := func(userID int64, text string) {
		notifications <- capturedNotification{userID: userID, text: text}
	}

	return NewDispatcher(store, sched, notify, zap.NewNop()), store, notifications
}

func TestAddAndListTasks(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	result := d.Execute(ctx, "add_task", map[string]string{"description": "خرید نان"}, testUser)
	assert.Contains(t, result, "خرید نان")

	listing := d.Execute(ctx, "list_tasks", nil, testUser)
	assert.Contains(t, listing, "1. خرید نان")

	// Idempotent without intervening writes
	assert.Equal(t, listing, d.Execute(ctx, "list_tasks", nil, testUser))
}

func TestCompleteTaskPositionalIndex(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	for _, desc := range []string{"A", "B", "C"} {
		d.Execute(ctx, "add_task", map[string]string{"description": desc}, testUser)
	}

	result := d.Execute(ctx, "complete_task", map[string]string{"task_number": "2"}, testUser)
	assert.Contains(t, result, "B")

	// C shifts down into position 2
	listing := d.Execute(ctx, "list_tasks", nil, testUser)
	assert.Contains(t, listing, "1. A")
	assert.Contains(t, listing, "2. C")
	assert.NotContains(t, listing, "B")
}

func TestCompleteTaskInvalidInput(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	d.Execute(ctx, "add_task", map[string]string{"description": "A"}, testUser)

	assert.Equal(t, "❌ کدام وظیفه را تکمیل کنم؟ شماره آن را بگویید.",
		d.Execute(ctx, "complete_task", nil, testUser))
	assert.Equal(t, "❌ شماره وظیفه باید عدد باشد.",
		d.Execute(ctx, "complete_task", map[string]string{"task_number": "two"}, testUser))
	assert.Equal(t, "❌ شماره وظیفه نامعتبر است.",
		d.Execute(ctx, "complete_task", map[string]string{"task_number": "5"}, testUser))
	assert.Equal(t, "❌ شماره وظیفه نامعتبر است.",
		d.Execute(ctx, "complete_task", map[string]string{"task_number": "0"}, testUser))
}

func TestNotes(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.Equal(t, "❌ متن یادداشت را وارد کنید.",
		d.Execute(ctx, "add_note", nil, testUser))

	for i := 1; i <= 12; i++ {
		d.Execute(ctx, "add_note", map[string]string{"content": fmt.Sprintf("note %d", i)}, testUser)
	}

	listing := d.Execute(ctx, "list_notes", nil, testUser)
	// Most recent first, bounded to the last 10
	assert.Contains(t, listing, "note 12")
	assert.Contains(t, listing, "note 3")
	assert.NotContains(t, listing, "note 2 📅")
	first := strings.Index(listing, "note 12")
	last := strings.Index(listing, "note 3")
	assert.Less(t, first, last)
}

func TestSetReminderFiresAndCompletes(t *testing.T) {
	d, store, notifications := newTestDispatcher(t)
	ctx := context.Background()

	result := d.Execute(ctx, "set_reminder",
		map[string]string{"time": "0m", "description": "قرار ملاقات"}, testUser)
	assert.Contains(t, result, "قرار ملاقات")

	select {
	case n := <-notifications:
		assert.Equal(t, testUser, n.userID)
		assert.Contains(t, n.text, "قرار ملاقات")
	case <-time.After(2 * time.Second):
		t.Fatal("reminder was never delivered")
	}

	// Exactly one delivery attempt
	select {
	case <-notifications:
		t.Fatal("reminder delivered more than once")
	case <-time.After(50 * time.Millisecond):
	}

	reminder, ok := store.GetReminder(1)
	require.True(t, ok)
	assert.True(t, reminder.Completed)
}

func TestSetReminderInvalidTime(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.Equal(t, "❌ زمان و توضیحات یادآوری لازم است. مثل: '30 دقیقه دیگر قرار ملاقات'",
		d.Execute(ctx, "set_reminder", map[string]string{"description": "x"}, testUser))

	result := d.Execute(ctx, "set_reminder",
		map[string]string{"time": "soon", "description": "x"}, testUser)
	assert.True(t, strings.HasPrefix(result, "❌"))
	assert.Contains(t, result, "30m")
}

func TestTipsAndQuotes(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.Contains(t, tips, d.Execute(ctx, "get_tip", nil, testUser))
	assert.Contains(t, quotes, d.Execute(ctx, "get_quote", nil, testUser))
}

func TestSummaryCounts(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	ctx := context.Background()

	// 2 completed today, 3 pending, 1 note today, 2 AI exchanges today
	for i := 0; i < 5; i++ {
		d.Execute(ctx, "add_task", map[string]string{"description": fmt.Sprintf("t%d", i)}, testUser)
	}
	d.Execute(ctx, "complete_task", map[string]string{"task_number": "1"}, testUser)
	d.Execute(ctx, "complete_task", map[string]string{"task_number": "1"}, testUser)
	d.Execute(ctx, "add_note", map[string]string{"content": "n"}, testUser)
	for i := 0; i < 2; i++ {
		err := store.SaveConversation(ctx, &models.AIConversation{
			UserID: testUser, Message: "m", Response: "r", ModelUsed: "test",
		})
		require.NoError(t, err)
	}

	result := d.Execute(ctx, "get_summary", nil, testUser)
	assert.Contains(t, result, "✅ وظایف تکمیل شده: 2")
	assert.Contains(t, result, "📋 وظایف باقی‌مانده: 3")
	assert.Contains(t, result, "📝 یادداشت‌های امروز: 1")
	assert.Contains(t, result, "🤖 گفتگوهای AI: 2")
}

func TestUnknownFunction(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	result := d.Execute(context.Background(), "launch_rocket", nil, testUser)
	assert.Equal(t, "❌ عملکرد 'launch_rocket' شناخته شده نیست.", result)
}

func TestMissingTaskDescription(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	assert.Equal(t, "❌ نیاز به توضیحات وظیفه دارم.",
		d.Execute(context.Background(), "add_task", map[string]string{}, testUser))
}
