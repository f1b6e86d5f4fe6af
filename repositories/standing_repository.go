package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-rounds/models"
)

var (
	ErrTournamentStandingNotFound = errors.New("tournament standing not found")
	ErrStandingTournamentInvalid  = errors.New("standing tournament conflict or invalid")
)

type TournamentStandingRepository interface {
	// Upsert перезаписывает строку по ключу (tournament_id, player_id).
	Upsert(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TournamentStanding, error)
}

type postgresTournamentStandingRepository struct {
	db *sql.DB // Main DB connection, can be used if exec is nil
}

func NewPostgresTournamentStandingRepository(db *sql.DB) TournamentStandingRepository {
	return &postgresTournamentStandingRepository{db: db}
}

func (r *postgresTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentStandingRepository) Upsert(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error {
	detail := standing.Detail
	if detail == nil {
		detail = models.StandingDetail{}
	}
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to encode standing detail for player %d: %w", standing.PlayerID, err)
	}

	query := `
		INSERT INTO tournament_standings
		    (tournament_id, player_id, total_score, total_ob, detail, rank, verified, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (tournament_id, player_id)
		DO UPDATE SET
			total_score = EXCLUDED.total_score,
			total_ob = EXCLUDED.total_ob,
			detail = EXCLUDED.detail,
			rank = EXCLUDED.rank,
			verified = EXCLUDED.verified,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		standing.TournamentID, standing.PlayerID, standing.TotalScore, standing.TotalOB,
		string(detailJSON), standing.Rank, standing.Verified,
	).Scan(&standing.UpdatedAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation &&
			constraint == "tournament_standings_tournament_id_fkey" {
			return ErrStandingTournamentInvalid
		}
		return fmt.Errorf("failed to upsert standing for t:%d p:%d: %w", standing.TournamentID, standing.PlayerID, err)
	}
	return nil
}

func (r *postgresTournamentStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TournamentStanding, error) {
	query := `
		SELECT ts.tournament_id, ts.player_id, COALESCE(u.nickname, TRIM(u.first_name || ' ' || u.last_name), ''),
		       ts.total_score, ts.total_ob, ts.detail, ts.rank, ts.verified, ts.updated_at
		FROM tournament_standings ts
		LEFT JOIN users u ON u.id = ts.player_id
		WHERE ts.tournament_id = $1
		ORDER BY ts.rank ASC, ts.total_ob ASC, 3 ASC, ts.player_id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	standings := make([]*models.TournamentStanding, 0)
	for rows.Next() {
		var s models.TournamentStanding
		var detailJSON []byte
		if err := rows.Scan(
			&s.TournamentID, &s.PlayerID, &s.PlayerName,
			&s.TotalScore, &s.TotalOB, &detailJSON, &s.Rank, &s.Verified, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", err)
		}
		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &s.Detail); err != nil {
				return nil, fmt.Errorf("failed to decode standing detail for player %d: %w", s.PlayerID, err)
			}
		}
		standings = append(standings, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
