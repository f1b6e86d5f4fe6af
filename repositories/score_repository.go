package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-rounds/models"
)

var (
	ErrScoreParticipationInvalid = errors.New("score entry references no participation in this round")
	ErrScoreValueInvalid         = errors.New("score entry violates strokes/ob constraints")
)

type ScoreRepository interface {
	// Upsert пишет запись по ключу (round_session_id, player_id, hole_number), последняя запись побеждает.
	Upsert(ctx context.Context, exec SQLExecutor, entry *models.ScoreEntry) error
	ListByRound(ctx context.Context, exec SQLExecutor, roundSessionID int) ([]*models.ScoreEntry, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.ScoreEntry, error)
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) Upsert(ctx context.Context, exec SQLExecutor, e *models.ScoreEntry) error {
	query := `
		INSERT INTO score_entries (round_session_id, player_id, hole_number, strokes, ob_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (round_session_id, player_id, hole_number)
		DO UPDATE SET strokes = EXCLUDED.strokes, ob_count = EXCLUDED.ob_count, updated_at = EXCLUDED.updated_at
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		e.RoundSessionID, e.PlayerID, e.HoleNumber, e.Strokes, e.OBCount,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok {
			switch code {
			case pqForeignKeyViolation:
				return ErrScoreParticipationInvalid
			case pqCheckViolation:
				return ErrScoreValueInvalid
			}
		}
		return fmt.Errorf("failed to upsert score (round %d, player %d, hole %d): %w",
			e.RoundSessionID, e.PlayerID, e.HoleNumber, err)
	}
	return nil
}

func (r *postgresScoreRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.ScoreEntry, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list score entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.ScoreEntry, 0)
	for rows.Next() {
		var e models.ScoreEntry
		if err := rows.Scan(&e.RoundSessionID, &e.PlayerID, &e.HoleNumber, &e.Strokes, &e.OBCount, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score entry row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score entry rows: %w", err)
	}
	return entries, nil
}

func (r *postgresScoreRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundSessionID int) ([]*models.ScoreEntry, error) {
	query := `
		SELECT round_session_id, player_id, hole_number, strokes, ob_count, updated_at
		FROM score_entries
		WHERE round_session_id = $1
		ORDER BY player_id ASC, hole_number ASC`
	return r.list(ctx, exec, query, roundSessionID)
}

func (r *postgresScoreRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.ScoreEntry, error) {
	query := `
		SELECT se.round_session_id, se.player_id, se.hole_number, se.strokes, se.ob_count, se.updated_at
		FROM score_entries se
		JOIN round_sessions rs ON rs.id = se.round_session_id
		WHERE rs.tournament_id = $1
		ORDER BY rs.round_number ASC, se.player_id ASC, se.hole_number ASC`
	return r.list(ctx, exec, query, tournamentID)
}
