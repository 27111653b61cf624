package models

import "time"

// OfflineMessage is a message from a non-owner sender queued while the
// bot is in offline mode. The queue is drained when the owner returns.
type OfflineMessage struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

// AIConversation is one audit-log entry per AI exchange, tagged with the
// model that produced the response. Only read back for daily counts.
type AIConversation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	ModelUsed string    `json:"model_used"`
	CreatedAt time.Time `json:"created_at"`
}
