package models

import "time"

type ParticipantState struct {
	PlayerID int  `json:"player_id"`
	IsReady  bool `json:"is_ready"`
}

// RoundState - снимок состояния раунда, который клиенты опрашивают каждые несколько секунд.
type RoundState struct {
	RoundSessionID int                `json:"round_session_id"`
	TournamentID   int                `json:"tournament_id"`
	RoundNumber    int                `json:"round_number"`
	Status         RoundStatus        `json:"status"`
	ExpiresAt      time.Time          `json:"expires_at"`
	Expired        bool               `json:"expired"`
	Participants   []ParticipantState `json:"participants"`
	ReadyCount     int                `json:"ready_count"`
	Total          int                `json:"total"`
	PollIntervalMS int64              `json:"poll_interval_ms"`
}

// ReadyResult is returned by mark_ready.
type ReadyResult struct {
	DidStart   bool `json:"did_start"`
	ReadyCount int  `json:"ready_count"`
	Total      int  `json:"total"`
}
