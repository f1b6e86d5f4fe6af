package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/Dosada05/tournament-rounds/repositories"
)

// Caller - текущий пользователь, как его определил сервис идентификации.
type Caller struct {
	UserID int
}

func (c Caller) Authenticated() bool {
	return c.UserID > 0
}

type StartRoundResult struct {
	RoundSession *models.RoundSession `json:"round_session"`
	Created      bool                 `json:"created"`
}

// RoundCoordinator is the request boundary of the round subsystem.
// It checks request shape and caller rights; state rules live in the underlying services.
type RoundCoordinator interface {
	StartRound(ctx context.Context, caller Caller, tournamentID, roundNumber int) (*StartRoundResult, error)
	GetRoundState(ctx context.Context, roundSessionID int) (*models.RoundState, error)
	MarkReady(ctx context.Context, caller Caller, roundSessionID int) (*models.ReadyResult, error)
	SubmitHoleScores(ctx context.Context, caller Caller, roundSessionID, hole int, entries []ScoreEntryInput) (int, error)
	ListRoundScores(ctx context.Context, roundSessionID int) ([]*models.ScoreEntry, error)
	CompleteRound(ctx context.Context, caller Caller, roundSessionID int) (*models.RoundSession, error)
	FinalizeTournament(ctx context.Context, caller Caller, tournamentID int) (int, error)
	ListStandings(ctx context.Context, tournamentID int) ([]*models.TournamentStanding, error)
}

type roundCoordinator struct {
	tournamentRepo    repositories.TournamentRepository
	participationRepo repositories.ParticipationRepository
	rounds            RoundSessionService
	scores            ScoreService
	standings         StandingsService
	logger            *slog.Logger
}

func NewRoundCoordinator(
	tournamentRepo repositories.TournamentRepository,
	participationRepo repositories.ParticipationRepository,
	rounds RoundSessionService,
	scores ScoreService,
	standings StandingsService,
	logger *slog.Logger,
) RoundCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &roundCoordinator{
		tournamentRepo:    tournamentRepo,
		participationRepo: participationRepo,
		rounds:            rounds,
		scores:            scores,
		standings:         standings,
		logger:            logger,
	}
}

func (c *roundCoordinator) requireOrganizer(ctx context.Context, caller Caller, tournamentID int) error {
	if !caller.Authenticated() {
		return ErrNotOrganizer
	}
	tournament, err := c.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return mapTournamentRepoError(err, tournamentID)
	}
	if !tournament.IsOrganizer(caller.UserID) {
		c.logger.WarnContext(ctx, "organizer-only action rejected",
			slog.Int("tournament_id", tournamentID), slog.Int("user_id", caller.UserID))
		return ErrNotOrganizer
	}
	return nil
}

func (c *roundCoordinator) StartRound(ctx context.Context, caller Caller, tournamentID, roundNumber int) (*StartRoundResult, error) {
	if roundNumber < 1 {
		return nil, ErrInvalidRoundNumber
	}
	if err := c.requireOrganizer(ctx, caller, tournamentID); err != nil {
		return nil, err
	}
	session, created, err := c.rounds.CreateOrGet(ctx, tournamentID, roundNumber)
	if err != nil {
		return nil, err
	}
	return &StartRoundResult{RoundSession: session, Created: created}, nil
}

func (c *roundCoordinator) GetRoundState(ctx context.Context, roundSessionID int) (*models.RoundState, error) {
	return c.rounds.GetState(ctx, roundSessionID)
}

func (c *roundCoordinator) MarkReady(ctx context.Context, caller Caller, roundSessionID int) (*models.ReadyResult, error) {
	if !caller.Authenticated() {
		return nil, ErrNotParticipant
	}
	return c.rounds.MarkReady(ctx, roundSessionID, caller.UserID)
}

func (c *roundCoordinator) SubmitHoleScores(ctx context.Context, caller Caller, roundSessionID, hole int, entries []ScoreEntryInput) (int, error) {
	if len(entries) == 0 {
		return 0, ErrNoEntries
	}
	if !caller.Authenticated() {
		return 0, ErrNotParticipant
	}
	if _, err := c.rounds.GetByID(ctx, roundSessionID); err != nil {
		return 0, err
	}
	_, err := c.participationRepo.FindByRoundAndPlayer(ctx, nil, roundSessionID, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipationNotFound) {
			return 0, fmt.Errorf("%w (user %d, round session %d)", ErrNotParticipant, caller.UserID, roundSessionID)
		}
		return 0, err
	}
	return c.scores.SubmitHoleScores(ctx, roundSessionID, hole, entries)
}

func (c *roundCoordinator) ListRoundScores(ctx context.Context, roundSessionID int) ([]*models.ScoreEntry, error) {
	return c.scores.ListRoundScores(ctx, roundSessionID)
}

func (c *roundCoordinator) CompleteRound(ctx context.Context, caller Caller, roundSessionID int) (*models.RoundSession, error) {
	session, err := c.rounds.GetByID(ctx, roundSessionID)
	if err != nil {
		return nil, err
	}
	if err := c.requireOrganizer(ctx, caller, session.TournamentID); err != nil {
		return nil, err
	}
	return c.rounds.Complete(ctx, roundSessionID)
}

func (c *roundCoordinator) FinalizeTournament(ctx context.Context, caller Caller, tournamentID int) (int, error) {
	if err := c.requireOrganizer(ctx, caller, tournamentID); err != nil {
		return 0, err
	}
	return c.standings.Finalize(ctx, tournamentID)
}

func (c *roundCoordinator) ListStandings(ctx context.Context, tournamentID int) ([]*models.TournamentStanding, error) {
	return c.standings.ListStandings(ctx, tournamentID)
}
