package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/lib/pq"
)

var (
	ErrParticipationNotFound     = errors.New("participation not found")
	ErrParticipationConflict     = errors.New("participation conflict: player already in this round")
	ErrParticipationRoundInvalid = errors.New("participation round session conflict or invalid")
)

type ParticipationRepository interface {
	// BulkCreate создаёт по одной записи (is_ready=false) на каждого игрока.
	BulkCreate(ctx context.Context, exec SQLExecutor, roundSessionID int, playerIDs []int) error
	FindByRoundAndPlayer(ctx context.Context, exec SQLExecutor, roundSessionID, playerID int) (*models.Participation, error)
	ListByRound(ctx context.Context, exec SQLExecutor, roundSessionID int) ([]*models.Participation, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Participation, error)
	// MarkReady flips is_ready false->true; returns false if it was already true.
	MarkReady(ctx context.Context, exec SQLExecutor, participationID int) (bool, error)
	CountReadiness(ctx context.Context, exec SQLExecutor, roundSessionID int) (models.Readiness, error)
}

type postgresParticipationRepository struct {
	db *sql.DB
}

func NewPostgresParticipationRepository(db *sql.DB) ParticipationRepository {
	return &postgresParticipationRepository{db: db}
}

func (r *postgresParticipationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipationRepository) BulkCreate(ctx context.Context, exec SQLExecutor, roundSessionID int, playerIDs []int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO participations (round_session_id, player_id, is_ready)
		SELECT $1, player_id, FALSE FROM unnest($2::int[]) AS player_id`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, roundSessionID, pq.Array(toInt64s(playerIDs)))
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch {
			case code == pqUniqueViolation && constraint == "participations_round_session_id_player_id_key":
				return ErrParticipationConflict
			case code == pqForeignKeyViolation && constraint == "participations_round_session_id_fkey":
				return ErrParticipationRoundInvalid
			}
		}
		return fmt.Errorf("failed to create participations for round session %d: %w", roundSessionID, err)
	}
	return nil
}

func (r *postgresParticipationRepository) scanParticipation(rowScanner interface {
	Scan(dest ...interface{}) error
}) (*models.Participation, error) {
	var p models.Participation
	var readyAt sql.NullTime
	if err := rowScanner.Scan(&p.ID, &p.RoundSessionID, &p.PlayerID, &p.IsReady, &readyAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	if readyAt.Valid {
		p.ReadyAt = &readyAt.Time
	}
	return &p, nil
}

func (r *postgresParticipationRepository) FindByRoundAndPlayer(ctx context.Context, exec SQLExecutor, roundSessionID, playerID int) (*models.Participation, error) {
	query := `
		SELECT id, round_session_id, player_id, is_ready, ready_at, created_at
		FROM participations
		WHERE round_session_id = $1 AND player_id = $2`

	p, err := r.scanParticipation(r.getExecutor(exec).QueryRowContext(ctx, query, roundSessionID, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, fmt.Errorf("failed to find participation: %w", err)
	}
	return p, nil
}

func (r *postgresParticipationRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Participation, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	defer rows.Close()

	participations := make([]*models.Participation, 0)
	for rows.Next() {
		p, errScan := r.scanParticipation(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan participation row: %w", errScan)
		}
		participations = append(participations, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participation rows: %w", err)
	}
	return participations, nil
}

func (r *postgresParticipationRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundSessionID int) ([]*models.Participation, error) {
	query := `
		SELECT id, round_session_id, player_id, is_ready, ready_at, created_at
		FROM participations
		WHERE round_session_id = $1
		ORDER BY player_id ASC`
	return r.list(ctx, exec, query, roundSessionID)
}

func (r *postgresParticipationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Participation, error) {
	query := `
		SELECT p.id, p.round_session_id, p.player_id, p.is_ready, p.ready_at, p.created_at
		FROM participations p
		JOIN round_sessions rs ON rs.id = p.round_session_id
		WHERE rs.tournament_id = $1
		ORDER BY rs.round_number ASC, p.player_id ASC`
	return r.list(ctx, exec, query, tournamentID)
}

func (r *postgresParticipationRepository) MarkReady(ctx context.Context, exec SQLExecutor, participationID int) (bool, error) {
	query := `UPDATE participations SET is_ready = TRUE, ready_at = NOW() WHERE id = $1 AND is_ready = FALSE`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, participationID)
	if err != nil {
		return false, fmt.Errorf("failed to mark participation %d ready: %w", participationID, err)
	}
	if err := checkAffectedRows(result, ErrParticipationNotFound); err != nil {
		if errors.Is(err, ErrParticipationNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *postgresParticipationRepository) CountReadiness(ctx context.Context, exec SQLExecutor, roundSessionID int) (models.Readiness, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE is_ready), COUNT(*)
		FROM participations
		WHERE round_session_id = $1`

	var rd models.Readiness
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, roundSessionID).Scan(&rd.ReadyCount, &rd.Total); err != nil {
		return models.Readiness{}, fmt.Errorf("failed to count readiness for round session %d: %w", roundSessionID, err)
	}
	return rd, nil
}
