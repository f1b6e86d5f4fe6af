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
	ErrTournamentNotFound = errors.New("tournament not found")
)

// TournamentRepository is a read-only view of the tournament/roster store.
type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListParticipantIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, status, organizer_id, course_id, max_participants
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	var maxParticipants sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Status, &t.OrganizerID, &t.CourseID, &maxParticipants,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	if maxParticipants.Valid {
		v := int(maxParticipants.Int64)
		t.MaxParticipants = &v
	}
	return t, nil
}

// ListParticipantIDs возвращает текущий состав турнира, отсортированный по user_id.
func (r *postgresTournamentRepository) ListParticipantIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COALESCE(array_agg(user_id ORDER BY user_id), '{}')
		FROM tournament_participants
		WHERE tournament_id = $1`

	var ids []int64
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(pq.Array(&ids)); err != nil {
		return nil, fmt.Errorf("failed to list participants of tournament %d: %w", tournamentID, err)
	}
	return toInts(ids), nil
}
