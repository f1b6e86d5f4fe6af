package models

import "time"

type HoleResult struct {
	Strokes int `json:"strokes"`
	OBCount int `json:"ob_count"`
}

// StandingDetail: номер раунда -> номер лунки -> результат.
type StandingDetail map[int]map[int]HoleResult

type TournamentStanding struct {
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	PlayerID     int            `json:"player_id" db:"player_id"`
	PlayerName   string         `json:"player_name" db:"-"`
	TotalScore   int            `json:"total_score" db:"total_score"`
	TotalOB      int            `json:"total_ob" db:"total_ob"`
	Detail       StandingDetail `json:"detail" db:"detail"`
	Rank         int            `json:"rank" db:"rank"`
	Verified     bool           `json:"verified" db:"verified"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}
