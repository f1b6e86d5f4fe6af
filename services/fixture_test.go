package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/Dosada05/tournament-rounds/storage"
	"github.com/stretchr/testify/require"
)

const (
	testTournamentID = 1
	testOrganizerID  = 100
	testCourseID     = 10
	testHoleCount    = 18
)

type fixture struct {
	store       *memStore
	cache       *memCache
	archive     *stubArchive
	rounds      RoundSessionService
	scores      ScoreService
	standings   StandingsService
	coordinator RoundCoordinator
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture: турнир IN_PROGRESS, организатор 100, игроки 1..n, поле на 18 лунок.
func newFixture(t *testing.T, players ...int) *fixture {
	t.Helper()
	if len(players) == 0 {
		players = []int{1, 2, 3}
	}

	store := newMemStore()
	store.addCourse(&models.Course{ID: testCourseID, Name: "Pine Hill", HoleCount: testHoleCount})
	store.addTournament(&models.Tournament{
		ID:          testTournamentID,
		Name:        "Autumn Open",
		Status:      models.StatusInProgress,
		OrganizerID: testOrganizerID,
		CourseID:    testCourseID,
	}, players...)
	store.addUser(&models.User{ID: testOrganizerID, FirstName: "Olga", LastName: "Org", Role: models.RoleOrganizer})
	for _, p := range players {
		store.addUser(&models.User{ID: p, FirstName: "Player", LastName: string(rune('A' + p - 1)), Role: models.RolePlayer})
	}

	tx := memTxManager{store: store}
	cache := newMemCache()
	archive := &stubArchive{}
	logger := testLogger()

	rounds := NewRoundSessionService(tx,
		memTournaments{store}, memSessions{store}, memParticipations{store},
		cache, RoundSessionConfig{Expiry: time.Hour, PollInterval: 3 * time.Second}, logger)
	scores := NewScoreService(tx,
		memTournaments{store}, memCourses{store}, memSessions{store}, memParticipations{store}, memScores{store}, logger)
	standings := NewStandingsService(tx,
		memTournaments{store}, memSessions{store}, memParticipations{store}, memScores{store},
		memStandings{store}, memUsers{store}, archive, logger)
	coordinator := NewRoundCoordinator(memTournaments{store}, memParticipations{store}, rounds, scores, standings, logger)

	return &fixture{
		store:       store,
		cache:       cache,
		archive:     archive,
		rounds:      rounds,
		scores:      scores,
		standings:   standings,
		coordinator: coordinator,
	}
}

// startedRound создает раунд и отмечает готовность всех игроков.
func (f *fixture) startedRound(t *testing.T, roundNumber int, players ...int) *models.RoundSession {
	t.Helper()
	ctx := context.Background()
	session, _, err := f.rounds.CreateOrGet(ctx, testTournamentID, roundNumber)
	require.NoError(t, err)
	for _, p := range players {
		_, err := f.rounds.MarkReady(ctx, session.ID, p)
		require.NoError(t, err)
	}
	session, err = f.rounds.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoundStatusInProgress, session.Status)
	return session
}

type stubArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func (a *stubArchive) Put(_ context.Context, key string, _ string, body io.Reader) (*storage.PutResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failPut {
		return nil, errors.New("archive unavailable")
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return nil, err
	}
	if a.objects == nil {
		a.objects = map[string][]byte{}
	}
	a.objects[key] = buf.Bytes()
	return &storage.PutResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (a *stubArchive) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (a *stubArchive) object(key string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.objects[key]
	return b, ok
}
