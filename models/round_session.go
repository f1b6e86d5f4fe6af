package models

import "time"

type RoundStatus string

const (
	RoundStatusWaiting    RoundStatus = "waiting"
	RoundStatusInProgress RoundStatus = "inProgress"
	RoundStatusCompleted  RoundStatus = "completed"
)

// RoundSession - одна сессия раунда турнира. Уникальна по (tournament_id, round_number).
type RoundSession struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int         `json:"round_number" db:"round_number"`
	Status       RoundStatus `json:"status" db:"status"`
	ExpiresAt    time.Time   `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	StartedAt    *time.Time  `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}

func (s *RoundSession) IsExpired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
