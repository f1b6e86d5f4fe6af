package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/lib/pq"
)

var ErrCourseNotFound = errors.New("course not found")

type CourseRepository interface {
	GetByID(ctx context.Context, id int) (*models.Course, error)
}

type postgresCourseRepository struct {
	db *sql.DB
}

func NewPostgresCourseRepository(db *sql.DB) CourseRepository {
	return &postgresCourseRepository{db: db}
}

func (r *postgresCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `SELECT id, name, hole_count, COALESCE(pars, '{}') FROM courses WHERE id = $1`

	c := &models.Course{}
	var pars []int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.HoleCount, pq.Array(&pars))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	c.Pars = toInts(pars)
	return c, nil
}
