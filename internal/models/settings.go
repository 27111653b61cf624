package models

// UserSettings is the per-user preference record, one row per user,
// created lazily on first write. Updates touch single fields and leave
// the rest intact.
type UserSettings struct {
	UserID          int64  `json:"user_id"`
	DailyTipEnabled bool   `json:"daily_tip_enabled"`
	DailyTipTime    string `json:"daily_tip_time"` // "HH:MM"
	VoiceReplies    bool   `json:"voice_replies"`
	AIEnabled       bool   `json:"ai_enabled"`
	AIModel         string `json:"ai_model"`
}

// DefaultSettings returns the settings a user has before any write.
func DefaultSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:          userID,
		DailyTipEnabled: true,
		DailyTipTime:    "09:00",
		VoiceReplies:    false,
		AIEnabled:       true,
		AIModel:         "",
	}
}
