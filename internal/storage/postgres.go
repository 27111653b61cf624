package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/xaenox/jarvis-bot/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) CreateTask(ctx context.Context, userID int64, description string) (*models.Task, error) {
	task := &models.Task{UserID: userID, Description: description}

	query := `
		INSERT INTO tasks (user_id, description)
		VALUES ($1, $2)
		RETURNING id, created_at, completed`

	err := s.db.QueryRowContext(ctx, query, userID, description).
		Scan(&task.ID, &task.CreatedAt, &task.Completed)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}

	return task, nil
}

func (s *PostgresStorage) ListPendingTasks(ctx context.Context, userID int64) ([]*models.Task, error) {
	query := `
		SELECT id, user_id, description, created_at, completed
		FROM tasks
		WHERE user_id = $1 AND completed = FALSE
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(&task.ID, &task.UserID, &task.Description, &task.CreatedAt, &task.Completed); err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (s *PostgresStorage) CompleteTask(ctx context.Context, taskID int64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = TRUE WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("error completing task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}

func (s *PostgresStorage) ClearTasks(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error clearing tasks: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CreateNote(ctx context.Context, userID int64, content string) (*models.Note, error) {
	note := &models.Note{UserID: userID, Content: content}

	query := `
		INSERT INTO notes (user_id, content)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query, userID, content).Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	return note, nil
}

func (s *PostgresStorage) ListRecentNotes(ctx context.Context, userID int64, limit int) ([]*models.Note, error) {
	query := `
		SELECT id, user_id, content, created_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.ID, &note.UserID, &note.Content, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning note: %w", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

func (s *PostgresStorage) CreateReminder(ctx context.Context, userID int64, description string, dueAt time.Time) (*models.Reminder, error) {
	reminder := &models.Reminder{UserID: userID, Description: description, DueAt: dueAt}

	query := `
		INSERT INTO reminders (user_id, description, due_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, completed`

	err := s.db.QueryRowContext(ctx, query, userID, description, dueAt).
		Scan(&reminder.ID, &reminder.CreatedAt, &reminder.Completed)
	if err != nil {
		return nil, fmt.Errorf("error creating reminder: %w", err)
	}

	return reminder, nil
}

func (s *PostgresStorage) CompleteReminder(ctx context.Context, reminderID int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE reminders SET completed = TRUE WHERE id = $1`, reminderID); err != nil {
		return fmt.Errorf("error completing reminder: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetUserSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings := &models.UserSettings{}

	query := `
		SELECT user_id, daily_tip_enabled, daily_tip_time, voice_replies, ai_enabled, ai_model
		FROM settings
		WHERE user_id = $1`

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.DailyTipEnabled,
		&settings.DailyTipTime,
		&settings.VoiceReplies,
		&settings.AIEnabled,
		&settings.AIModel,
	)
	if err == sql.ErrNoRows {
		return models.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying settings: %w", err)
	}

	return settings, nil
}

// Single-column upserts so that updating one preference never clobbers
// the others.
func (s *PostgresStorage) SetAIEnabled(ctx context.Context, userID int64, enabled bool) error {
	query := `
		INSERT INTO settings (user_id, ai_enabled)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET ai_enabled = EXCLUDED.ai_enabled`

	if _, err := s.db.ExecContext(ctx, query, userID, enabled); err != nil {
		return fmt.Errorf("error setting ai_enabled: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SetAIModel(ctx context.Context, userID int64, model string) error {
	query := `
		INSERT INTO settings (user_id, ai_model)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET ai_model = EXCLUDED.ai_model`

	if _, err := s.db.ExecContext(ctx, query, userID, model); err != nil {
		return fmt.Errorf("error setting ai_model: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SaveOfflineMessage(ctx context.Context, msg *models.OfflineMessage) error {
	query := `
		INSERT INTO offline_messages (user_id, username, first_name, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, received_at`

	err := s.db.QueryRowContext(ctx, query, msg.UserID, msg.Username, msg.FirstName, msg.Message).
		Scan(&msg.ID, &msg.ReceivedAt)
	if err != nil {
		return fmt.Errorf("error saving offline message: %w", err)
	}
	return nil
}

// DrainOfflineMessages reads the queued messages newest-first and
// deletes the queue in the same transaction.
func (s *PostgresStorage) DrainOfflineMessages(ctx context.Context) ([]*models.OfflineMessage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, user_id, username, first_name, message, received_at
		FROM offline_messages
		ORDER BY received_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying offline messages: %w", err)
	}

	var messages []*models.OfflineMessage
	for rows.Next() {
		msg := &models.OfflineMessage{}
		var username, firstName sql.NullString
		if err := rows.Scan(&msg.ID, &msg.UserID, &username, &firstName, &msg.Message, &msg.ReceivedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning offline message: %w", err)
		}
		msg.Username = username.String
		msg.FirstName = firstName.String
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error reading offline messages: %w", err)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM offline_messages`); err != nil {
		return nil, fmt.Errorf("error deleting offline messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing drain: %w", err)
	}

	return messages, nil
}

func (s *PostgresStorage) SaveConversation(ctx context.Context, conv *models.AIConversation) error {
	query := `
		INSERT INTO ai_conversations (user_id, message, response, model_used)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query, conv.UserID, conv.Message, conv.Response, conv.ModelUsed).
		Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving conversation: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetDailySummary(ctx context.Context, userID int64, day time.Time) (*models.DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	summary := &models.DailySummary{}

	queries := []struct {
		dest  *int
		query string
		args  []interface{}
	}{
		{
			&summary.CompletedTasks,
			`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND completed = TRUE AND created_at >= $2 AND created_at < $3`,
			[]interface{}{userID, start, end},
		},
		{
			&summary.PendingTasks,
			`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND completed = FALSE`,
			[]interface{}{userID},
		},
		{
			&summary.NotesToday,
			`SELECT COUNT(*) FROM notes WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`,
			[]interface{}{userID, start, end},
		},
		{
			&summary.AIExchanges,
			`SELECT COUNT(*) FROM ai_conversations WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`,
			[]interface{}{userID, start, end},
		},
	}

	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("error counting for summary: %w", err)
		}
	}

	return summary, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
