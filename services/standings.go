package services

import (
	"sort"

	"github.com/Dosada05/tournament-rounds/models"
)

// ComputeStandings агрегирует результаты всех раундов турнира в ранжированную таблицу.
//
// Набор игроков берется из участий во всех раундах, а не из текущего состава турнира.
// Порядок: total_score, затем total_ob, затем имя, затем player_id. Ранг - competition ranking (1,1,3).
func ComputeStandings(
	tournamentID int,
	sessions []*models.RoundSession,
	participations []*models.Participation,
	entries []*models.ScoreEntry,
	names map[int]string,
) []*models.TournamentStanding {
	roundNumbers := make(map[int]int, len(sessions))
	for _, s := range sessions {
		roundNumbers[s.ID] = s.RoundNumber
	}

	byPlayer := make(map[int]*models.TournamentStanding)
	standingFor := func(playerID int) *models.TournamentStanding {
		st, ok := byPlayer[playerID]
		if !ok {
			st = &models.TournamentStanding{
				TournamentID: tournamentID,
				PlayerID:     playerID,
				PlayerName:   names[playerID],
				Detail:       models.StandingDetail{},
				Verified:     true,
			}
			byPlayer[playerID] = st
		}
		return st
	}

	for _, p := range participations {
		if _, ok := roundNumbers[p.RoundSessionID]; !ok {
			continue
		}
		standingFor(p.PlayerID)
	}

	for _, e := range entries {
		roundNumber, ok := roundNumbers[e.RoundSessionID]
		if !ok {
			continue
		}
		st := standingFor(e.PlayerID)
		st.TotalScore += e.Total()
		st.TotalOB += e.OBCount

		holes, ok := st.Detail[roundNumber]
		if !ok {
			holes = make(map[int]models.HoleResult)
			st.Detail[roundNumber] = holes
		}
		holes[e.HoleNumber] = models.HoleResult{Strokes: e.Strokes, OBCount: e.OBCount}
	}

	standings := make([]*models.TournamentStanding, 0, len(byPlayer))
	for _, st := range byPlayer {
		standings = append(standings, st)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore < b.TotalScore
		}
		if a.TotalOB != b.TotalOB {
			return a.TotalOB < b.TotalOB
		}
		if a.PlayerName != b.PlayerName {
			return a.PlayerName < b.PlayerName
		}
		return a.PlayerID < b.PlayerID
	})

	for i, st := range standings {
		if i > 0 {
			prev := standings[i-1]
			if prev.TotalScore == st.TotalScore && prev.TotalOB == st.TotalOB {
				st.Rank = prev.Rank
				continue
			}
		}
		st.Rank = i + 1
	}
	return standings
}
