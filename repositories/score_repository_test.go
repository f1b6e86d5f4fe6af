package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/tournament-rounds/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRepository_Upsert(t *testing.T) {
	now := time.Now()
	entry := func() *models.ScoreEntry {
		return &models.ScoreEntry{RoundSessionID: 3, PlayerID: 1, HoleNumber: 5, Strokes: 4, OBCount: 1}
	}

	t.Run("writes and returns timestamp", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresScoreRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (round_session_id, player_id, hole_number)")).
			WithArgs(3, 1, 5, 4, 1).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		e := entry()
		require.NoError(t, repo.Upsert(context.Background(), nil, e))
		assert.Equal(t, now, e.UpdatedAt)
	})

	tests := []struct {
		name    string
		code    pq.ErrorCode
		wantErr error
	}{
		{name: "no participation", code: pqForeignKeyViolation, wantErr: ErrScoreParticipationInvalid},
		{name: "check constraint", code: pqCheckViolation, wantErr: ErrScoreValueInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewPostgresScoreRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO score_entries")).
				WillReturnError(&pq.Error{Code: tt.code})

			assert.ErrorIs(t, repo.Upsert(context.Background(), nil, entry()), tt.wantErr)
		})
	}
}

func TestScoreRepository_ListByTournament(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresScoreRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("JOIN round_sessions rs ON rs.id = se.round_session_id")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"round_session_id", "player_id", "hole_number", "strokes", "ob_count", "updated_at"}).
			AddRow(3, 1, 1, 4, 0, now).
			AddRow(3, 1, 2, 5, 2, now))

	entries, err := repo.ListByTournament(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[1].HoleNumber)
	assert.Equal(t, 2, entries[1].OBCount)
}
