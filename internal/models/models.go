package models

import "time"

// Task is a to-do item. Tasks are never deleted except by an explicit
// bulk clear; completing one only flips the flag.
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Completed   bool      `json:"completed"`
}

// Note is an append-only text note.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Reminder is a one-shot reminder. The scheduler references it by ID to
// mark it completed when it fires.
type Reminder struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Description string    `json:"description"`
	DueAt       time.Time `json:"due_at"`
	CreatedAt   time.Time `json:"created_at"`
	Completed   bool      `json:"completed"`
}

// DailySummary holds the four counts reported by get_summary for one
// local calendar day.
type DailySummary struct {
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	NotesToday     int `json:"notes_today"`
	AIExchanges    int `json:"ai_exchanges"`
}
