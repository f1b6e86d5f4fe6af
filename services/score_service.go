package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/Dosada05/tournament-rounds/repositories"
)

// ScoreEntryInput - одна строка из пакета результатов по лунке.
type ScoreEntryInput struct {
	PlayerID int `json:"player_id"`
	Strokes  int `json:"strokes"`
	OBCount  int `json:"ob_count"`
}

type ScoreService interface {
	// SubmitHoleScores сохраняет допустимые записи и возвращает их количество.
	// Записи для игроков вне раунда и с невалидными значениями отбрасываются.
	SubmitHoleScores(ctx context.Context, roundSessionID, hole int, entries []ScoreEntryInput) (int, error)
	ListRoundScores(ctx context.Context, roundSessionID int) ([]*models.ScoreEntry, error)
}

type scoreService struct {
	tx                repositories.TxManager
	tournamentRepo    repositories.TournamentRepository
	courseRepo        repositories.CourseRepository
	sessionRepo       repositories.RoundSessionRepository
	participationRepo repositories.ParticipationRepository
	scoreRepo         repositories.ScoreRepository
	logger            *slog.Logger
}

func NewScoreService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	courseRepo repositories.CourseRepository,
	sessionRepo repositories.RoundSessionRepository,
	participationRepo repositories.ParticipationRepository,
	scoreRepo repositories.ScoreRepository,
	logger *slog.Logger,
) ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &scoreService{
		tx:                tx,
		tournamentRepo:    tournamentRepo,
		courseRepo:        courseRepo,
		sessionRepo:       sessionRepo,
		participationRepo: participationRepo,
		scoreRepo:         scoreRepo,
		logger:            logger,
	}
}

func (s *scoreService) loadSession(ctx context.Context, roundSessionID int) (*models.RoundSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, nil, roundSessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundSessionNotFound) {
			return nil, ErrRoundSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *scoreService) SubmitHoleScores(ctx context.Context, roundSessionID, hole int, entries []ScoreEntryInput) (int, error) {
	logger := s.logger.With(slog.Int("round_session_id", roundSessionID), slog.Int("hole", hole))

	session, err := s.loadSession(ctx, roundSessionID)
	if err != nil {
		return 0, err
	}
	if session.Status != models.RoundStatusInProgress {
		return 0, fmt.Errorf("%w (round session %d is %s)", ErrRoundNotInProgress, roundSessionID, session.Status)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, session.TournamentID)
	if err != nil {
		return 0, mapTournamentRepoError(err, session.TournamentID)
	}
	course, err := s.courseRepo.GetByID(ctx, tournament.CourseID)
	if err != nil {
		return 0, mapCourseRepoError(err, tournament.CourseID)
	}
	if !course.HasHole(hole) {
		return 0, fmt.Errorf("%w: hole %d, course has %d holes", ErrHoleOutOfRange, hole, course.HoleCount)
	}

	if len(entries) == 0 {
		return 0, nil
	}

	participations, err := s.participationRepo.ListByRound(ctx, nil, roundSessionID)
	if err != nil {
		return 0, err
	}
	inRound := make(map[int]struct{}, len(participations))
	for _, p := range participations {
		inRound[p.PlayerID] = struct{}{}
	}

	// Дубликаты игрока в одном пакете: побеждает последняя запись, порядок первого появления сохраняется.
	accepted := make(map[int]ScoreEntryInput, len(entries))
	order := make([]int, 0, len(entries))
	rejected := 0
	for _, e := range entries {
		if _, ok := inRound[e.PlayerID]; !ok {
			rejected++
			continue
		}
		if e.Strokes < 1 || e.OBCount < 0 {
			rejected++
			continue
		}
		if _, seen := accepted[e.PlayerID]; !seen {
			order = append(order, e.PlayerID)
		}
		accepted[e.PlayerID] = e
	}

	if len(order) == 0 {
		logger.WarnContext(ctx, "all score entries rejected", slog.Int("submitted", len(entries)))
		return 0, ErrAllEntriesRejected
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Повторная проверка статуса под разделяемой блокировкой: complete не пройдет, пока идет запись.
		locked, err := s.sessionRepo.GetByIDForShare(ctx, exec, roundSessionID)
		if err != nil {
			if errors.Is(err, repositories.ErrRoundSessionNotFound) {
				return ErrRoundSessionNotFound
			}
			return err
		}
		if locked.Status != models.RoundStatusInProgress {
			return fmt.Errorf("%w (round session %d is %s)", ErrRoundNotInProgress, roundSessionID, locked.Status)
		}

		for _, playerID := range order {
			in := accepted[playerID]
			entry := &models.ScoreEntry{
				RoundSessionID: roundSessionID,
				PlayerID:       playerID,
				HoleNumber:     hole,
				Strokes:        in.Strokes,
				OBCount:        in.OBCount,
			}
			if err := s.scoreRepo.Upsert(ctx, exec, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if rejected > 0 {
		logger.InfoContext(ctx, "some score entries were skipped", slog.Int("rejected", rejected))
	}
	logger.InfoContext(ctx, "hole scores saved", slog.Int("saved", len(order)))
	return len(order), nil
}

func (s *scoreService) ListRoundScores(ctx context.Context, roundSessionID int) ([]*models.ScoreEntry, error) {
	if _, err := s.loadSession(ctx, roundSessionID); err != nil {
		return nil, err
	}
	return s.scoreRepo.ListByRound(ctx, nil, roundSessionID)
}
