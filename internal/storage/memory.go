package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xaenox/jarvis-bot/internal/models"
)

// MemoryStorage is an in-process Storage used for tests and for running
// without a database (database.use_in_memory).
type MemoryStorage struct {
	mu              sync.RWMutex
	tasks           map[int64]*models.Task
	notes           map[int64]*models.Note
	reminders       map[int64]*models.Reminder
	settings        map[int64]*models.UserSettings
	offlineMessages []*models.OfflineMessage
	conversations   []*models.AIConversation
	nextID          map[string]int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks:     make(map[int64]*models.Task),
		notes:     make(map[int64]*models.Note),
		reminders: make(map[int64]*models.Reminder),
		settings:  make(map[int64]*models.UserSettings),
		nextID:    make(map[string]int64),
	}
}

func (s *MemoryStorage) next(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *MemoryStorage) CreateTask(ctx context.Context, userID int64, description string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &models.Task{
		ID:          s.next("tasks"),
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now(),
	}
	s.tasks[task.ID] = task

	clone := *task
	return &clone, nil
}

func (s *MemoryStorage) ListPendingTasks(ctx context.Context, userID int64) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []*models.Task
	for _, task := range s.tasks {
		if task.UserID == userID && !task.Completed {
			clone := *task
			tasks = append(tasks, &clone)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	return tasks, nil
}

func (s *MemoryStorage) CompleteTask(ctx context.Context, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return fmt.Errorf("task not found")
	}
	task.Completed = true
	return nil
}

func (s *MemoryStorage) ClearTasks(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, task := range s.tasks {
		if task.UserID == userID {
			delete(s.tasks, id)
		}
	}
	return nil
}

func (s *MemoryStorage) CreateNote(ctx context.Context, userID int64, content string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note := &models.Note{
		ID:        s.next("notes"),
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.notes[note.ID] = note

	clone := *note
	return &clone, nil
}

func (s *MemoryStorage) ListRecentNotes(ctx context.Context, userID int64, limit int) ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notes []*models.Note
	for _, note := range s.notes {
		if note.UserID == userID {
			clone := *note
			notes = append(notes, &clone)
		}
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].ID > notes[j].ID
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})

	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}

	return notes, nil
}

func (s *MemoryStorage) CreateReminder(ctx context.Context, userID int64, description string, dueAt time.Time) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminder := &models.Reminder{
		ID:          s.next("reminders"),
		UserID:      userID,
		Description: description,
		DueAt:       dueAt,
		CreatedAt:   time.Now(),
	}
	s.reminders[reminder.ID] = reminder

	clone := *reminder
	return &clone, nil
}

func (s *MemoryStorage) CompleteReminder(ctx context.Context, reminderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reminder, exists := s.reminders[reminderID]; exists {
		reminder.Completed = true
	}
	return nil
}

// GetReminder is a test helper not part of the Storage interface.
func (s *MemoryStorage) GetReminder(reminderID int64) (*models.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reminder, exists := s.reminders[reminderID]
	if !exists {
		return nil, false
	}
	clone := *reminder
	return &clone, true
}

func (s *MemoryStorage) GetUserSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if settings, exists := s.settings[userID]; exists {
		clone := *settings
		return &clone, nil
	}
	return models.DefaultSettings(userID), nil
}

func (s *MemoryStorage) SetAIEnabled(ctx context.Context, userID int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, exists := s.settings[userID]
	if !exists {
		settings = models.DefaultSettings(userID)
		s.settings[userID] = settings
	}
	settings.AIEnabled = enabled
	return nil
}

func (s *MemoryStorage) SetAIModel(ctx context.Context, userID int64, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, exists := s.settings[userID]
	if !exists {
		settings = models.DefaultSettings(userID)
		s.settings[userID] = settings
	}
	settings.AIModel = model
	return nil
}

func (s *MemoryStorage) SaveOfflineMessage(ctx context.Context, msg *models.OfflineMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.next("offline_messages")
	msg.ReceivedAt = time.Now()

	clone := *msg
	s.offlineMessages = append(s.offlineMessages, &clone)
	return nil
}

func (s *MemoryStorage) DrainOfflineMessages(ctx context.Context) ([]*models.OfflineMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]*models.OfflineMessage, len(s.offlineMessages))
	for i, msg := range s.offlineMessages {
		// newest first
		messages[len(s.offlineMessages)-1-i] = msg
	}
	s.offlineMessages = nil

	return messages, nil
}

func (s *MemoryStorage) SaveConversation(ctx context.Context, conv *models.AIConversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv.ID = s.next("ai_conversations")
	conv.CreatedAt = time.Now()

	clone := *conv
	s.conversations = append(s.conversations, &clone)
	return nil
}

func (s *MemoryStorage) GetDailySummary(ctx context.Context, userID int64, day time.Time) (*models.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	inDay := func(t time.Time) bool {
		return !t.Before(start) && t.Before(end)
	}

	summary := &models.DailySummary{}
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if task.Completed && inDay(task.CreatedAt) {
			summary.CompletedTasks++
		}
		if !task.Completed {
			summary.PendingTasks++
		}
	}
	for _, note := range s.notes {
		if note.UserID == userID && inDay(note.CreatedAt) {
			summary.NotesToday++
		}
	}
	for _, conv := range s.conversations {
		if conv.UserID == userID && inDay(conv.CreatedAt) {
			summary.AIExchanges++
		}
	}

	return summary, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
