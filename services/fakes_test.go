package services

import (
	"context"
	"sort"
	"time"

	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

// Фейковые репозитории в памяти для тестов сервисов.

type fakeTournamentRepo struct {
	seq   int
	items map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{items: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.seq++
	t.ID = r.seq
	t.CreatedAt = time.Now()
	copied := *t
	r.items[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, _ repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := r.items[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *t
	r.items[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.items[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeTournamentRepo) ListForAutoStatusUpdate(_ context.Context, now time.Time) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.items {
		switch t.Status {
		case models.TournamentStatusUpcoming:
			if t.StartDate != nil && !t.StartDate.After(now) {
				copied := *t
				out = append(out, &copied)
			}
		case models.TournamentStatusOngoing:
			if t.EndDate != nil && !t.EndDate.After(now) {
				copied := *t
				out = append(out, &copied)
			}
		}
	}
	return out, nil
}

type fakeParticipantRepo struct {
	seq   int
	items map[int]*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{items: make(map[int]*models.Participant)}
}

func (r *fakeParticipantRepo) Create(_ context.Context, p *models.Participant) error {
	for _, existing := range r.items {
		if existing.TournamentID == p.TournamentID && existing.Mode == p.Mode &&
			existing.EntityID() == p.EntityID() {
			return repositories.ErrParticipantConflict
		}
	}
	r.seq++
	p.ID = r.seq
	p.RegisteredAt = time.Now()
	copied := *p
	r.items[p.ID] = &copied
	return nil
}

func (r *fakeParticipantRepo) FindByID(_ context.Context, id int) (*models.Participant, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeParticipantRepo) FindByEntity(_ context.Context, tournamentID int, mode models.ParticipantMode, entityID int) (*models.Participant, error) {
	for _, p := range r.items {
		if p.TournamentID == tournamentID && p.Mode == mode && p.EntityID() == entityID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByTournament(_ context.Context, tournamentID int, modeFilter *models.ParticipantMode) ([]*models.Participant, error) {
	var out []*models.Participant
	for _, p := range r.items {
		if p.TournamentID != tournamentID {
			continue
		}
		if modeFilter != nil && p.Mode != *modeFilter {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipantRepo) CountByTournament(ctx context.Context, tournamentID int, modeFilter *models.ParticipantMode) (int, error) {
	list, err := r.ListByTournament(ctx, tournamentID, modeFilter)
	return len(list), err
}

func (r *fakeParticipantRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeUserRepo struct {
	seq   int
	items map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, existing := range r.items {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Nickname != nil && u.Nickname != nil && *existing.Nickname == *u.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	r.seq++
	u.ID = r.seq
	u.CreatedAt = time.Now()
	copied := *u
	r.items[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.items {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	if _, ok := r.items[u.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *u
	r.items[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeUserRepo) ListByIDs(_ context.Context, ids []int) ([]models.User, error) {
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type generationKey struct {
	tournamentID int
	phase        models.MatchPhase
}

type fakeMatchRepo struct {
	seq         int
	items       map[int]*models.Match
	generations map[generationKey]bool
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		items:       make(map[int]*models.Match),
		generations: make(map[generationKey]bool),
	}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.seq++
	m.ID = r.seq
	m.CreatedAt = time.Now()
	copied := *m
	r.items[m.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) CreateGeneration(_ context.Context, _ repositories.SQLExecutor, tournamentID int, phase models.MatchPhase) error {
	key := generationKey{tournamentID, phase}
	if r.generations[key] {
		return repositories.ErrGenerationConflict
	}
	r.generations[key] = true
	return nil
}

func (r *fakeMatchRepo) GenerationExists(_ context.Context, tournamentID int, phase models.MatchPhase) (bool, error) {
	return r.generations[generationKey{tournamentID, phase}], nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.items {
		if m.TournamentID != tournamentID {
			continue
		}
		if filter.Phase != nil && m.Phase != *filter.Phase {
			continue
		}
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Phase != out[j].Phase {
			return out[i].Phase < out[j].Phase
		}
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out, nil
}

func (r *fakeMatchRepo) UpdateScore(_ context.Context, id int, score1, score2 *int, status models.MatchStatus) error {
	m, ok := r.items[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Score1, m.Score2, m.Status = score1, score2, status
	return nil
}

func (r *fakeMatchRepo) UpdateSides(_ context.Context, id int, team1ID, team2ID, player1ID, player2ID *int, status models.MatchStatus) error {
	m, ok := r.items[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Team1ID, m.Team2ID = team1ID, team2ID
	m.Player1ID, m.Player2ID = player1ID, player2ID
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeTeamRepo struct {
	seq     int
	items   map[int]*models.Team
	members map[int][]int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{items: make(map[int]*models.Team), members: make(map[int][]int)}
}

func (r *fakeTeamRepo) Create(_ context.Context, t *models.Team) error {
	for _, existing := range r.items {
		if existing.Name == t.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	r.seq++
	t.ID = r.seq
	t.CreatedAt = time.Now()
	copied := *t
	r.items[t.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, t *models.Team) error {
	if _, ok := r.items[t.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	copied := *t
	r.items[t.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id int) error {
	delete(r.items, id)
	return nil
}

func (r *fakeTeamRepo) List(_ context.Context, _, _ int) ([]models.Team, error) {
	out := make([]models.Team, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) AddMember(_ context.Context, teamID, userID int) error {
	for _, id := range r.members[teamID] {
		if id == userID {
			return repositories.ErrTeamMemberConflict
		}
	}
	r.members[teamID] = append(r.members[teamID], userID)
	return nil
}

func (r *fakeTeamRepo) RemoveMember(_ context.Context, teamID, userID int) error {
	ids := r.members[teamID]
	for i, id := range ids {
		if id == userID {
			r.members[teamID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListMembers(_ context.Context, teamID int) ([]models.User, error) {
	out := make([]models.User, 0, len(r.members[teamID]))
	for _, id := range r.members[teamID] {
		out = append(out, models.User{ID: id})
	}
	return out, nil
}

func (r *fakeTeamRepo) IsMember(_ context.Context, teamID, userID int) (bool, error) {
	for _, id := range r.members[teamID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeNotificationRepo struct {
	seq   int
	items []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(_ context.Context, _ repositories.SQLExecutor, n *models.Notification) error {
	r.seq++
	n.ID = r.seq
	n.CreatedAt = time.Now()
	copied := *n
	r.items = append(r.items, &copied)
	return nil
}

func (r *fakeNotificationRepo) ListDueByUser(_ context.Context, userID int, now time.Time, unreadOnly bool) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range r.items {
		if n.UserID != userID || n.NotificationDate.After(now) {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeNotificationRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range r.items {
		if n.NotificationDate.After(now) || n.Read || n.DispatchedAt != nil {
			continue
		}
		copied := *n
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkDispatched(_ context.Context, ids []int, at time.Time) error {
	for _, id := range ids {
		for _, n := range r.items {
			if n.ID == id {
				when := at
				n.DispatchedAt = &when
			}
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID int) error {
	for _, n := range r.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}
