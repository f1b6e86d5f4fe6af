package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/Dosada05/tournament-rounds/repositories"
)

// memStore - хранилище в памяти для тестов сервисов. Один мьютекс на все таблицы,
// уникальность (tournament_id, round_number) проверяется так же, как ограничение в БД.
type memStore struct {
	mu sync.Mutex

	tournaments map[int]*models.Tournament
	rosters     map[int][]int
	courses     map[int]*models.Course
	users       map[int]*models.User

	nextSessionID       int
	sessions            map[int]*models.RoundSession
	nextParticipationID int
	participations      map[int]*models.Participation
	scores              map[scoreKey]*models.ScoreEntry
	standings           map[standingKey]*models.TournamentStanding

	transitions map[int]int // round_session_id -> успешные переходы в inProgress
}

type scoreKey struct{ round, player, hole int }
type standingKey struct{ tournament, player int }

func newMemStore() *memStore {
	return &memStore{
		tournaments:    map[int]*models.Tournament{},
		rosters:        map[int][]int{},
		courses:        map[int]*models.Course{},
		users:          map[int]*models.User{},
		sessions:       map[int]*models.RoundSession{},
		participations: map[int]*models.Participation{},
		scores:         map[scoreKey]*models.ScoreEntry{},
		standings:      map[standingKey]*models.TournamentStanding{},
		transitions:    map[int]int{},
	}
}

func (s *memStore) addTournament(t *models.Tournament, roster ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = t
	s.rosters[t.ID] = roster
}

func (s *memStore) setTournamentStatus(id int, status models.TournamentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[id].Status = status
}

func (s *memStore) addCourse(c *models.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[c.ID] = c
}

func (s *memStore) addUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *memStore) setRoundStatus(id int, status models.RoundStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id].Status = status
}

func (s *memStore) sessionCount(tournamentID, roundNumber int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rs := range s.sessions {
		if rs.TournamentID == tournamentID && rs.RoundNumber == roundNumber {
			n++
		}
	}
	return n
}

func (s *memStore) participationCount(roundSessionID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.participations {
		if p.RoundSessionID == roundSessionID {
			n++
		}
	}
	return n
}

func (s *memStore) scoreCount(roundSessionID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.scores {
		if k.round == roundSessionID {
			n++
		}
	}
	return n
}

func (s *memStore) transitionCount(roundSessionID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitions[roundSessionID]
}

// memTx - транзакция в памяти: запоминает откаты, выполняет их при ошибке fn.
type memTx struct {
	undo []func()
}

func (*memTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errors.New("memTx does not execute SQL")
}

func (*memTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("memTx does not execute SQL")
}

func (*memTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func onRollback(exec repositories.SQLExecutor, fn func()) {
	if tx, ok := exec.(*memTx); ok {
		tx.undo = append(tx.undo, fn)
	}
}

type memTxManager struct{ store *memStore }

func (m memTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx := &memTx{}
	if err := fn(tx); err != nil {
		m.store.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		m.store.mu.Unlock()
		return err
	}
	return nil
}

// --- TournamentRepository ---

type memTournaments struct{ *memStore }

func (r memTournaments) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTournaments) ListParticipantIDs(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := append([]int(nil), r.rosters[tournamentID]...)
	sort.Ints(ids)
	return ids, nil
}

// --- CourseRepository ---

type memCourses struct{ *memStore }

func (r memCourses) GetByID(_ context.Context, id int) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

// --- UserRepository ---

type memUsers struct{ *memStore }

func (r memUsers) ListByIDs(_ context.Context, ids []int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- RoundSessionRepository ---

type memSessions struct{ *memStore }

func (r memSessions) Create(_ context.Context, exec repositories.SQLExecutor, session *models.RoundSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[session.TournamentID]; !ok {
		return repositories.ErrRoundSessionTournamentInvalid
	}
	for _, existing := range r.sessions {
		if existing.TournamentID == session.TournamentID && existing.RoundNumber == session.RoundNumber {
			return repositories.ErrRoundSessionExists
		}
	}
	r.nextSessionID++
	session.ID = r.nextSessionID
	session.CreatedAt = time.Now().UTC()
	cp := *session
	r.sessions[cp.ID] = &cp
	id := cp.ID
	onRollback(exec, func() { delete(r.sessions, id) })
	return nil
}

func (r memSessions) get(id int) (*models.RoundSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrRoundSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r memSessions) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.RoundSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r memSessions) GetByIDForShare(_ context.Context, _ repositories.SQLExecutor, id int) (*models.RoundSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r memSessions) GetByTournamentAndNumber(_ context.Context, _ repositories.SQLExecutor, tournamentID, roundNumber int) (*models.RoundSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.TournamentID == tournamentID && s.RoundNumber == roundNumber {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrRoundSessionNotFound
}

func (r memSessions) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.RoundSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.RoundSession, 0)
	for _, s := range r.sessions {
		if s.TournamentID == tournamentID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (r memSessions) TransitionStatus(_ context.Context, _ repositories.SQLExecutor, id int, from []models.RoundStatus, to models.RoundStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if s.Status == f {
			s.Status = to
			now := time.Now().UTC()
			switch to {
			case models.RoundStatusInProgress:
				s.StartedAt = &now
				r.transitions[id]++
			case models.RoundStatusCompleted:
				s.CompletedAt = &now
			}
			return true, nil
		}
	}
	return false, nil
}

// --- ParticipationRepository ---

type memParticipations struct{ *memStore }

func (r memParticipations) BulkCreate(_ context.Context, exec repositories.SQLExecutor, roundSessionID int, playerIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[roundSessionID]; !ok {
		return repositories.ErrParticipationRoundInvalid
	}
	created := make([]int, 0, len(playerIDs))
	for _, pid := range playerIDs {
		for _, p := range r.participations {
			if p.RoundSessionID == roundSessionID && p.PlayerID == pid {
				return repositories.ErrParticipationConflict
			}
		}
		r.nextParticipationID++
		r.participations[r.nextParticipationID] = &models.Participation{
			ID:             r.nextParticipationID,
			RoundSessionID: roundSessionID,
			PlayerID:       pid,
			CreatedAt:      time.Now().UTC(),
		}
		created = append(created, r.nextParticipationID)
	}
	onRollback(exec, func() {
		for _, id := range created {
			delete(r.participations, id)
		}
	})
	return nil
}

func (r memParticipations) FindByRoundAndPlayer(_ context.Context, _ repositories.SQLExecutor, roundSessionID, playerID int) (*models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participations {
		if p.RoundSessionID == roundSessionID && p.PlayerID == playerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrParticipationNotFound
}

func (r memParticipations) ListByRound(_ context.Context, _ repositories.SQLExecutor, roundSessionID int) ([]*models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Participation, 0)
	for _, p := range r.participations {
		if p.RoundSessionID == roundSessionID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r memParticipations) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Participation, 0)
	for _, p := range r.participations {
		if s, ok := r.sessions[p.RoundSessionID]; ok && s.TournamentID == tournamentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundSessionID != out[j].RoundSessionID {
			return out[i].RoundSessionID < out[j].RoundSessionID
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r memParticipations) MarkReady(_ context.Context, _ repositories.SQLExecutor, participationID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participations[participationID]
	if !ok || p.IsReady {
		return false, nil
	}
	now := time.Now().UTC()
	p.IsReady = true
	p.ReadyAt = &now
	return true, nil
}

func (r memParticipations) CountReadiness(_ context.Context, _ repositories.SQLExecutor, roundSessionID int) (models.Readiness, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rd models.Readiness
	for _, p := range r.participations {
		if p.RoundSessionID != roundSessionID {
			continue
		}
		rd.Total++
		if p.IsReady {
			rd.ReadyCount++
		}
	}
	return rd, nil
}

// --- ScoreRepository ---

type memScores struct{ *memStore }

func (r memScores) Upsert(_ context.Context, exec repositories.SQLExecutor, e *models.ScoreEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Strokes < 1 || e.OBCount < 0 {
		return repositories.ErrScoreValueInvalid
	}
	found := false
	for _, p := range r.participations {
		if p.RoundSessionID == e.RoundSessionID && p.PlayerID == e.PlayerID {
			found = true
			break
		}
	}
	if !found {
		return repositories.ErrScoreParticipationInvalid
	}

	key := scoreKey{e.RoundSessionID, e.PlayerID, e.HoleNumber}
	prev, existed := r.scores[key]
	e.UpdatedAt = time.Now().UTC()
	cp := *e
	r.scores[key] = &cp
	onRollback(exec, func() {
		if existed {
			r.scores[key] = prev
		} else {
			delete(r.scores, key)
		}
	})
	return nil
}

func (r memScores) list(match func(*models.ScoreEntry) bool) []*models.ScoreEntry {
	out := make([]*models.ScoreEntry, 0)
	for _, e := range r.scores {
		if match(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RoundSessionID != b.RoundSessionID {
			return a.RoundSessionID < b.RoundSessionID
		}
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		return a.HoleNumber < b.HoleNumber
	})
	return out
}

func (r memScores) ListByRound(_ context.Context, _ repositories.SQLExecutor, roundSessionID int) ([]*models.ScoreEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(e *models.ScoreEntry) bool { return e.RoundSessionID == roundSessionID }), nil
}

func (r memScores) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.ScoreEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(e *models.ScoreEntry) bool {
		s, ok := r.sessions[e.RoundSessionID]
		return ok && s.TournamentID == tournamentID
	}), nil
}

// --- TournamentStandingRepository ---

type memStandings struct{ *memStore }

func (r memStandings) Upsert(_ context.Context, exec repositories.SQLExecutor, st *models.TournamentStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[st.TournamentID]; !ok {
		return repositories.ErrStandingTournamentInvalid
	}
	key := standingKey{st.TournamentID, st.PlayerID}
	prev, existed := r.standings[key]
	st.UpdatedAt = time.Now().UTC()
	cp := *st
	r.standings[key] = &cp
	onRollback(exec, func() {
		if existed {
			r.standings[key] = prev
		} else {
			delete(r.standings, key)
		}
	})
	return nil
}

func (r memStandings) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.TournamentStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.TournamentStanding, 0)
	for k, st := range r.standings {
		if k.tournament == tournamentID {
			cp := *st
			if u, ok := r.users[st.PlayerID]; ok {
				cp.PlayerName = u.DisplayName()
			}
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

// memCache - RoundStateCache в памяти.
type memCache struct {
	mu          sync.Mutex
	states      map[int]models.RoundState
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{states: map[int]models.RoundState{}}
}

func (c *memCache) Get(_ context.Context, id int) (*models.RoundState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[id]
	if !ok {
		return nil, false, nil
	}
	return &st, true, nil
}

func (c *memCache) Set(_ context.Context, state *models.RoundState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[state.RoundSessionID] = *state
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, id)
	c.invalidated++
	return nil
}
