package models

import "time"

// Score is a persisted high score record.
type Score struct {
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Difficulty string    `json:"difficulty"`
	SessionID  string    `json:"sessionID,omitempty"`
	AchievedAt time.Time `json:"achievedAt"`
}
