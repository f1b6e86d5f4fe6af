package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/Dosada05/tournament-rounds/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRoundExpiry  = 24 * time.Hour
	DefaultPollInterval = 3 * time.Second
)

// RoundStateCache хранит короткоживущие снимки состояния раунда. Может быть nil.
type RoundStateCache interface {
	Get(ctx context.Context, roundSessionID int) (*models.RoundState, bool, error)
	Set(ctx context.Context, state *models.RoundState) error
	Invalidate(ctx context.Context, roundSessionID int) error
}

type RoundSessionConfig struct {
	Expiry       time.Duration
	PollInterval time.Duration
}

// RoundSessionService governs one tournament round: waiting -> inProgress -> completed.
type RoundSessionService interface {
	// CreateOrGet is safe to call concurrently and converges to exactly one session
	// per (tournamentID, roundNumber). The bool reports whether this call created it.
	CreateOrGet(ctx context.Context, tournamentID, roundNumber int) (*models.RoundSession, bool, error)
	GetByID(ctx context.Context, roundSessionID int) (*models.RoundSession, error)
	GetState(ctx context.Context, roundSessionID int) (*models.RoundState, error)
	MarkReady(ctx context.Context, roundSessionID, playerID int) (*models.ReadyResult, error)
	Complete(ctx context.Context, roundSessionID int) (*models.RoundSession, error)
}

type roundSessionService struct {
	tx                repositories.TxManager
	tournamentRepo    repositories.TournamentRepository
	sessionRepo       repositories.RoundSessionRepository
	participationRepo repositories.ParticipationRepository
	cache             RoundStateCache
	cfg               RoundSessionConfig
	logger            *slog.Logger
	now               func() time.Time
}

func NewRoundSessionService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	sessionRepo repositories.RoundSessionRepository,
	participationRepo repositories.ParticipationRepository,
	cache RoundStateCache,
	cfg RoundSessionConfig,
	logger *slog.Logger,
) RoundSessionService {
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultRoundExpiry
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &roundSessionService{
		tx:                tx,
		tournamentRepo:    tournamentRepo,
		sessionRepo:       sessionRepo,
		participationRepo: participationRepo,
		cache:             cache,
		cfg:               cfg,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *roundSessionService) CreateOrGet(ctx context.Context, tournamentID, roundNumber int) (*models.RoundSession, bool, error) {
	if roundNumber < 1 {
		return nil, false, ErrInvalidRoundNumber
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, false, mapTournamentRepoError(err, tournamentID)
	}
	if tournament.Status != models.StatusInProgress {
		return nil, false, fmt.Errorf("%w (tournament %d is %s)", ErrTournamentNotInProgress, tournamentID, tournament.Status)
	}

	existing, err := s.sessionRepo.GetByTournamentAndNumber(ctx, nil, tournamentID, roundNumber)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrRoundSessionNotFound) {
		return nil, false, err
	}

	session := &models.RoundSession{
		TournamentID: tournamentID,
		RoundNumber:  roundNumber,
		Status:       models.RoundStatusWaiting,
		ExpiresAt:    s.now().Add(s.cfg.Expiry).UTC(),
	}

	var participantCount int
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		playerIDs, err := s.tournamentRepo.ListParticipantIDs(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(playerIDs) == 0 {
			return ErrTournamentNoParticipants
		}
		if err := s.sessionRepo.Create(ctx, exec, session); err != nil {
			return err
		}
		participantCount = len(playerIDs)
		return s.participationRepo.BulkCreate(ctx, exec, session.ID, playerIDs)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRoundSessionExists) {
			// Другой вызов успел создать сессию первым - возвращаем его результат.
			winner, fetchErr := s.sessionRepo.GetByTournamentAndNumber(ctx, nil, tournamentID, roundNumber)
			if fetchErr != nil {
				return nil, false, fmt.Errorf("failed to re-fetch round %d of tournament %d after conflict: %w", roundNumber, tournamentID, fetchErr)
			}
			s.logger.InfoContext(ctx, "round session creation lost race, returning existing session",
				slog.Int("tournament_id", tournamentID), slog.Int("round_number", roundNumber),
				slog.Int("round_session_id", winner.ID))
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("failed to create round %d of tournament %d: %w", roundNumber, tournamentID, err)
	}

	s.invalidate(ctx, session.ID)
	s.logger.InfoContext(ctx, "round session created",
		slog.Int("tournament_id", tournamentID), slog.Int("round_number", roundNumber),
		slog.Int("round_session_id", session.ID), slog.Int("participants", participantCount))
	return session, true, nil
}

func (s *roundSessionService) GetByID(ctx context.Context, roundSessionID int) (*models.RoundSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, nil, roundSessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundSessionNotFound) {
			return nil, ErrRoundSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *roundSessionService) GetState(ctx context.Context, roundSessionID int) (*models.RoundState, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, roundSessionID); err != nil {
			s.logger.WarnContext(ctx, "round state cache read failed", slog.Int("round_session_id", roundSessionID), slog.Any("error", err))
		} else if ok {
			return cached, nil
		}
	}

	var session *models.RoundSession
	var participations []*models.Participation

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.GetByID(gCtx, roundSessionID)
		return err
	})
	g.Go(func() error {
		var err error
		participations, err = s.participationRepo.ListByRound(gCtx, nil, roundSessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := &models.RoundState{
		RoundSessionID: session.ID,
		TournamentID:   session.TournamentID,
		RoundNumber:    session.RoundNumber,
		Status:         session.Status,
		ExpiresAt:      session.ExpiresAt,
		Expired:        session.IsExpired(s.now()),
		Participants:   make([]models.ParticipantState, 0, len(participations)),
		Total:          len(participations),
		PollIntervalMS: s.cfg.PollInterval.Milliseconds(),
	}
	for _, p := range participations {
		state.Participants = append(state.Participants, models.ParticipantState{PlayerID: p.PlayerID, IsReady: p.IsReady})
		if p.IsReady {
			state.ReadyCount++
		}
	}

	// Снимок waiting не кешируем: готовность меняется между опросами, и запись могла
	// прочитаться до чужой инвалидации.
	if s.cache != nil && state.Status != models.RoundStatusWaiting {
		if err := s.cache.Set(ctx, state); err != nil {
			s.logger.WarnContext(ctx, "round state cache write failed", slog.Int("round_session_id", roundSessionID), slog.Any("error", err))
		}
	}
	return state, nil
}

func (s *roundSessionService) MarkReady(ctx context.Context, roundSessionID, playerID int) (*models.ReadyResult, error) {
	participation, err := s.participationRepo.FindByRoundAndPlayer(ctx, nil, roundSessionID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipationNotFound) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}

	changed := false
	if !participation.IsReady {
		changed, err = s.participationRepo.MarkReady(ctx, nil, participation.ID)
		if err != nil {
			return nil, err
		}
	}

	// Читаем агрегат после собственной записи: последний из одновременно готовых игроков увидит всех.
	readiness, err := s.participationRepo.CountReadiness(ctx, nil, roundSessionID)
	if err != nil {
		return nil, err
	}

	result := &models.ReadyResult{ReadyCount: readiness.ReadyCount, Total: readiness.Total}
	// Переход пробуем и для уже готового игрока: флаг мог записаться, а переход упасть.
	// Условие status = waiting оставляет старт единственным.
	if readiness.AllReady() {
		started, err := s.sessionRepo.TransitionStatus(ctx, nil, roundSessionID,
			[]models.RoundStatus{models.RoundStatusWaiting}, models.RoundStatusInProgress)
		if err != nil {
			if changed {
				s.invalidate(ctx, roundSessionID)
			}
			return nil, err
		}
		result.DidStart = started
		if started {
			s.logger.InfoContext(ctx, "round session started",
				slog.Int("round_session_id", roundSessionID), slog.Int("participants", readiness.Total))
		}
	}

	if changed || result.DidStart {
		s.invalidate(ctx, roundSessionID)
	}
	return result, nil
}

func (s *roundSessionService) Complete(ctx context.Context, roundSessionID int) (*models.RoundSession, error) {
	session, err := s.GetByID(ctx, roundSessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.RoundStatusCompleted {
		return session, nil
	}
	if !isValidRoundTransition(session.Status, models.RoundStatusCompleted) {
		return nil, fmt.Errorf("%w: round session %d has unknown status %s", ErrInvalidState, roundSessionID, session.Status)
	}

	_, err = s.sessionRepo.TransitionStatus(ctx, nil, roundSessionID,
		[]models.RoundStatus{models.RoundStatusWaiting, models.RoundStatusInProgress}, models.RoundStatusCompleted)
	if err != nil {
		return nil, err
	}

	// Перечитываем: при гонке другой вызов мог завершить раунд раньше нас.
	session, err = s.GetByID(ctx, roundSessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.RoundStatusCompleted {
		return nil, fmt.Errorf("round session %d could not be completed from status %s", roundSessionID, session.Status)
	}

	s.invalidate(ctx, roundSessionID)
	s.logger.InfoContext(ctx, "round session completed",
		slog.Int("round_session_id", roundSessionID), slog.Int("tournament_id", session.TournamentID))
	return session, nil
}

func (s *roundSessionService) invalidate(ctx context.Context, roundSessionID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, roundSessionID); err != nil {
		s.logger.WarnContext(ctx, "round state cache invalidation failed",
			slog.Int("round_session_id", roundSessionID), slog.Any("error", err))
	}
}
