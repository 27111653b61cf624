package storage

import (
	"context"
	"time"

	"github.com/xaenox/jarvis-bot/internal/models"
)

type Storage interface {
	// Tasks
	CreateTask(ctx context.Context, userID int64, description string) (*models.Task, error)
	ListPendingTasks(ctx context.Context, userID int64) ([]*models.Task, error)
	CompleteTask(ctx context.Context, taskID int64) error
	ClearTasks(ctx context.Context, userID int64) error

	// Notes
	CreateNote(ctx context.Context, userID int64, content string) (*models.Note, error)
	ListRecentNotes(ctx context.Context, userID int64, limit int) ([]*models.Note, error)

	// Reminders
	CreateReminder(ctx context.Context, userID int64, description string, dueAt time.Time) (*models.Reminder, error)
	CompleteReminder(ctx context.Context, reminderID int64) error

	// Per-user settings (lazy upsert, single-field updates)
	GetUserSettings(ctx context.Context, userID int64) (*models.UserSettings, error)
	SetAIEnabled(ctx context.Context, userID int64, enabled bool) error
	SetAIModel(ctx context.Context, userID int64, model string) error

	// Offline message queue
	SaveOfflineMessage(ctx context.Context, msg *models.OfflineMessage) error
	DrainOfflineMessages(ctx context.Context) ([]*models.OfflineMessage, error)

	// AI conversation audit log
	SaveConversation(ctx context.Context, conv *models.AIConversation) error

	// Daily counts for get_summary; day selects the local calendar day.
	GetDailySummary(ctx context.Context, userID int64, day time.Time) (*models.DailySummary, error)

	Close() error
}
