package models

import "time"

type Participation struct {
	ID             int        `json:"id" db:"id"`
	RoundSessionID int        `json:"round_session_id" db:"round_session_id"`
	PlayerID       int        `json:"player_id" db:"player_id"`
	IsReady        bool       `json:"is_ready" db:"is_ready"`
	ReadyAt        *time.Time `json:"ready_at,omitempty" db:"ready_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Readiness is the aggregate of all participations of one round session.
type Readiness struct {
	ReadyCount int `json:"ready_count"`
	Total      int `json:"total"`
}

func (r Readiness) AllReady() bool {
	return r.Total > 0 && r.ReadyCount == r.Total
}
