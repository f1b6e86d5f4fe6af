package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/Dosada05/tournament-rounds/repositories"
	"github.com/Dosada05/tournament-rounds/storage"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	// Finalize полностью пересчитывает и перезаписывает итоговую таблицу турнира.
	// Возвращает количество записанных строк; 0 без ошибки, если раундов не было.
	Finalize(ctx context.Context, tournamentID int) (int, error)
	ListStandings(ctx context.Context, tournamentID int) ([]*models.TournamentStanding, error)
}

type standingsService struct {
	tx                repositories.TxManager
	tournamentRepo    repositories.TournamentRepository
	sessionRepo       repositories.RoundSessionRepository
	participationRepo repositories.ParticipationRepository
	scoreRepo         repositories.ScoreRepository
	standingRepo      repositories.TournamentStandingRepository
	userRepo          repositories.UserRepository
	archive           storage.ResultsArchive
	logger            *slog.Logger
}

func NewStandingsService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	sessionRepo repositories.RoundSessionRepository,
	participationRepo repositories.ParticipationRepository,
	scoreRepo repositories.ScoreRepository,
	standingRepo repositories.TournamentStandingRepository,
	userRepo repositories.UserRepository,
	archive storage.ResultsArchive,
	logger *slog.Logger,
) StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &standingsService{
		tx:                tx,
		tournamentRepo:    tournamentRepo,
		sessionRepo:       sessionRepo,
		participationRepo: participationRepo,
		scoreRepo:         scoreRepo,
		standingRepo:      standingRepo,
		userRepo:          userRepo,
		archive:           archive,
		logger:            logger,
	}
}

func (s *standingsService) Finalize(ctx context.Context, tournamentID int) (int, error) {
	logger := s.logger.With(slog.Int("tournament_id", tournamentID))

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return 0, mapTournamentRepoError(err, tournamentID)
	}
	if tournament.Status != models.StatusCompleted {
		return 0, fmt.Errorf("%w (tournament %d is %s)", ErrTournamentNotCompleted, tournamentID, tournament.Status)
	}

	sessions, err := s.sessionRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return 0, err
	}
	if len(sessions) == 0 {
		logger.InfoContext(ctx, "nothing to finalize: tournament has no round sessions")
		return 0, nil
	}

	var participations []*models.Participation
	var entries []*models.ScoreEntry

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participations, err = s.participationRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.scoreRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("failed to load round data for tournament %d: %w", tournamentID, err)
	}

	playerIDs := make([]int, 0, len(participations))
	seen := make(map[int]struct{}, len(participations))
	for _, p := range participations {
		if _, ok := seen[p.PlayerID]; ok {
			continue
		}
		seen[p.PlayerID] = struct{}{}
		playerIDs = append(playerIDs, p.PlayerID)
	}
	users, err := s.userRepo.ListByIDs(ctx, playerIDs)
	if err != nil {
		return 0, err
	}

	standings := ComputeStandings(tournamentID, sessions, participations, entries, displayNames(users))

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, st := range standings {
			if err := s.standingRepo.Upsert(ctx, exec, st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to persist standings for tournament %d: %w", tournamentID, err)
	}

	logger.InfoContext(ctx, "tournament finalized",
		slog.Int("rounds", len(sessions)), slog.Int("standings_written", len(standings)))

	s.publish(ctx, logger, tournamentID, standings)
	return len(standings), nil
}

// publishedStandings - формат архива итогов.
type publishedStandings struct {
	TournamentID int                          `json:"tournament_id"`
	FinalizedAt  time.Time                    `json:"finalized_at"`
	Standings    []*models.TournamentStanding `json:"standings"`
}

// publish выкладывает итоги в архив. Ошибка только логируется: таблица в БД уже записана.
func (s *standingsService) publish(ctx context.Context, logger *slog.Logger, tournamentID int, standings []*models.TournamentStanding) {
	if s.archive == nil {
		return
	}
	payload, err := json.Marshal(publishedStandings{
		TournamentID: tournamentID,
		FinalizedAt:  time.Now().UTC(),
		Standings:    standings,
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to encode standings for archive", slog.Any("error", err))
		return
	}
	result, err := s.archive.Put(ctx, storage.StandingsKey(tournamentID), "application/json", bytes.NewReader(payload))
	if err != nil {
		logger.WarnContext(ctx, "failed to publish standings to archive", slog.Any("error", err))
		return
	}
	logger.InfoContext(ctx, "standings published", slog.String("location", result.Location))
}

func (s *standingsService) ListStandings(ctx context.Context, tournamentID int) ([]*models.TournamentStanding, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err, tournamentID)
	}
	return s.standingRepo.ListByTournament(ctx, nil, tournamentID)
}
