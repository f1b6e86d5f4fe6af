package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/lib/pq"
)

const roundSessionUniqueConstraint = "round_sessions_tournament_id_round_number_key"

var (
	ErrRoundSessionNotFound          = errors.New("round session not found")
	ErrRoundSessionExists            = errors.New("round session already exists for this tournament round")
	ErrRoundSessionTournamentInvalid = errors.New("round session tournament conflict or invalid")
)

type RoundSessionRepository interface {
	// Create возвращает ErrRoundSessionExists при нарушении уникальности (tournament_id, round_number).
	Create(ctx context.Context, exec SQLExecutor, session *models.RoundSession) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoundSession, error)
	// GetByIDForShare blocks concurrent status changes until the caller's transaction ends.
	GetByIDForShare(ctx context.Context, exec SQLExecutor, id int) (*models.RoundSession, error)
	GetByTournamentAndNumber(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (*models.RoundSession, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.RoundSession, error)
	// TransitionStatus меняет статус только если текущий статус входит в from.
	// Возвращает false, если ни одна строка не изменилась.
	TransitionStatus(ctx context.Context, exec SQLExecutor, id int, from []models.RoundStatus, to models.RoundStatus) (bool, error)
}

type postgresRoundSessionRepository struct {
	db *sql.DB
}

func NewPostgresRoundSessionRepository(db *sql.DB) RoundSessionRepository {
	return &postgresRoundSessionRepository{db: db}
}

func (r *postgresRoundSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const roundSessionColumns = `id, tournament_id, round_number, status, expires_at, created_at, started_at, completed_at`

func (r *postgresRoundSessionRepository) Create(ctx context.Context, exec SQLExecutor, s *models.RoundSession) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO round_sessions (tournament_id, round_number, status, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		s.TournamentID, s.RoundNumber, s.Status, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)

	return r.handleRoundSessionError(err)
}

func (r *postgresRoundSessionRepository) scanRoundSession(rowScanner interface{ Scan(...interface{}) error }) (*models.RoundSession, error) {
	var s models.RoundSession
	var startedAt, completedAt sql.NullTime
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.RoundNumber, &s.Status,
		&s.ExpiresAt, &s.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundSessionNotFound
		}
		return nil, err
	}
	if startedAt.Valid {
		s.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return &s, nil
}

func (r *postgresRoundSessionRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoundSession, error) {
	query := `SELECT ` + roundSessionColumns + ` FROM round_sessions WHERE id = $1`
	s, err := r.scanRoundSession(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrRoundSessionNotFound) {
		return nil, fmt.Errorf("failed to get round session %d: %w", id, err)
	}
	return s, err
}

func (r *postgresRoundSessionRepository) GetByIDForShare(ctx context.Context, exec SQLExecutor, id int) (*models.RoundSession, error) {
	query := `SELECT ` + roundSessionColumns + ` FROM round_sessions WHERE id = $1 FOR SHARE`
	s, err := r.scanRoundSession(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrRoundSessionNotFound) {
		return nil, fmt.Errorf("failed to lock round session %d: %w", id, err)
	}
	return s, err
}

func (r *postgresRoundSessionRepository) GetByTournamentAndNumber(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (*models.RoundSession, error) {
	query := `SELECT ` + roundSessionColumns + ` FROM round_sessions WHERE tournament_id = $1 AND round_number = $2`
	s, err := r.scanRoundSession(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, roundNumber))
	if err != nil && !errors.Is(err, ErrRoundSessionNotFound) {
		return nil, fmt.Errorf("failed to get round %d of tournament %d: %w", roundNumber, tournamentID, err)
	}
	return s, err
}

func (r *postgresRoundSessionRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.RoundSession, error) {
	query := `SELECT ` + roundSessionColumns + ` FROM round_sessions WHERE tournament_id = $1 ORDER BY round_number ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list round sessions for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	sessions := make([]*models.RoundSession, 0)
	for rows.Next() {
		s, errScan := r.scanRoundSession(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan round session row: %w", errScan)
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round session rows: %w", err)
	}
	return sessions, nil
}

func (r *postgresRoundSessionRepository) TransitionStatus(ctx context.Context, exec SQLExecutor, id int, from []models.RoundStatus, to models.RoundStatus) (bool, error) {
	fromStrings := make([]string, len(from))
	for i, st := range from {
		fromStrings[i] = string(st)
	}

	query := `
		UPDATE round_sessions SET
			status = $1::text,
			started_at = CASE WHEN $1::text = 'inProgress' THEN NOW() ELSE started_at END,
			completed_at = CASE WHEN $1::text = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $2 AND status = ANY($3)`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, string(to), id, pq.Array(fromStrings))
	if err != nil {
		return false, fmt.Errorf("failed to transition round session %d to %s: %w", id, to, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresRoundSessionRepository) handleRoundSessionError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, roundSessionUniqueConstraint) {
		return ErrRoundSessionExists
	}
	if code, constraint, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
		if constraint == "round_sessions_tournament_id_fkey" {
			return ErrRoundSessionTournamentInvalid
		}
	}
	return fmt.Errorf("failed to create round session: %w", err)
}
