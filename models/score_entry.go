package models

import "time"

// ScoreEntry is keyed by (round_session_id, player_id, hole_number); last write wins.
type ScoreEntry struct {
	RoundSessionID int       `json:"round_session_id" db:"round_session_id"`
	PlayerID       int       `json:"player_id" db:"player_id"`
	HoleNumber     int       `json:"hole_number" db:"hole_number"`
	Strokes        int       `json:"strokes" db:"strokes"`
	OBCount        int       `json:"ob_count" db:"ob_count"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Total is strokes plus out-of-bounds penalties.
func (e ScoreEntry) Total() int {
	return e.Strokes + e.OBCount
}
