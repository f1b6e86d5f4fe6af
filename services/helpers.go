package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/Dosada05/tournament-rounds/repositories"
)

// --- Общие хелперы ---

func mapTournamentRepoError(err error, tournamentID int) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return fmt.Errorf("%w (id %d)", ErrTournamentNotFound, tournamentID)
	}
	return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
}

func mapCourseRepoError(err error, courseID int) error {
	if errors.Is(err, repositories.ErrCourseNotFound) {
		return fmt.Errorf("%w (id %d)", ErrCourseNotFound, courseID)
	}
	return fmt.Errorf("failed to load course %d: %w", courseID, err)
}

func isValidRoundTransition(current, next models.RoundStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.RoundStatus][]models.RoundStatus{
		models.RoundStatusWaiting:    {models.RoundStatusInProgress, models.RoundStatusCompleted},
		models.RoundStatusInProgress: {models.RoundStatusCompleted},
		models.RoundStatusCompleted:  {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

// displayNames строит карту player_id -> отображаемое имя.
func displayNames(users []*models.User) map[int]string {
	names := make(map[int]string, len(users))
	for _, u := range users {
		if u == nil {
			continue
		}
		names[u.ID] = u.DisplayName()
	}
	return names
}
