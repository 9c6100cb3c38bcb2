package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

const organizerID = 100

type fixture struct {
	svc           TournamentService
	tournaments   *fakeTournamentRepo
	participants  *fakeParticipantRepo
	matches       *fakeMatchRepo
	teams         *fakeTeamRepo
	notifications *fakeNotificationRepo
}

func newFixture() *fixture {
	f := &fixture{
		tournaments:   newFakeTournamentRepo(),
		participants:  newFakeParticipantRepo(),
		matches:       newFakeMatchRepo(),
		teams:         newFakeTeamRepo(),
		notifications: newFakeNotificationRepo(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewTournamentService(nil, f.tournaments, f.participants, f.matches,
		f.teams, f.notifications, nil, logger)
	return f
}

// addTeam создаёт команду с капитаном captainID.
func (f *fixture) addTeam(t *testing.T, name string, captainID int) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, Sport: "football", CaptainID: captainID}
	if err := f.teams.Create(context.Background(), team); err != nil {
		t.Fatalf("failed to create team %s: %v", name, err)
	}
	return team
}

func (f *fixture) createTournament(t *testing.T, maxParticipants int, start *time.Time) *models.Tournament {
	t.Helper()
	input := TournamentInput{
		Name:            "City Cup",
		Sport:           "football",
		StartDate:       start,
		MaxParticipants: &maxParticipants,
	}
	tournament, err := f.svc.Create(context.Background(), organizerID, models.RoleOrganizer, input)
	if err != nil {
		t.Fatalf("failed to create tournament: %v", err)
	}
	return tournament
}

func intPtr(v int) *int { return &v }

func TestRegisterAutoGeneratesAtCapacity(t *testing.T) {
	f := newFixture()
	start := time.Now().Add(72 * time.Hour)
	tournament := f.createTournament(t, 4, &start)

	var teamIDs []int
	for i := 1; i <= 4; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		teamIDs = append(teamIDs, team.ID)
	}

	for i, teamID := range teamIDs[:3] {
		_, generated, err := f.svc.Register(context.Background(), tournament.ID, 10+i+1, models.ModeTeam, &teamID)
		if err != nil {
			t.Fatalf("register team %d: %v", teamID, err)
		}
		if generated {
			t.Fatalf("registration %d of 4 should not trigger generation", i+1)
		}
	}

	_, generated, err := f.svc.Register(context.Background(), tournament.ID, 14, models.ModeTeam, &teamIDs[3])
	if err != nil {
		t.Fatalf("register last team: %v", err)
	}
	if !generated {
		t.Fatal("reaching capacity should trigger qualifier generation")
	}

	matches, err := f.svc.ListMatches(context.Background(), tournament.ID, repositories.ListMatchesFilter{})
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(matches) != 6 {
		t.Fatalf("expected C(4,2)=6 matches, got %d", len(matches))
	}

	seen := make(map[[2]int]bool)
	for _, m := range matches {
		if m.Phase != models.PhaseQualifier {
			t.Errorf("match %d: phase = %s, want qualifier", m.ID, m.Phase)
		}
		if m.Status != models.MatchStatusScheduled {
			t.Errorf("match %d: status = %s, want scheduled", m.ID, m.Status)
		}
		if m.Team1ID == nil || m.Team2ID == nil {
			t.Fatalf("match %d has empty side", m.ID)
		}
		a, b := *m.Team1ID, *m.Team2ID
		if a > b {
			a, b = b, a
		}
		if seen[[2]int{a, b}] {
			t.Errorf("pair (%d, %d) generated twice", a, b)
		}
		seen[[2]int{a, b}] = true
	}

	// Напоминание каждому капитану, за сутки до старта.
	if len(f.notifications.items) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(f.notifications.items))
	}
	wantDate := start.Add(-24 * time.Hour)
	for _, n := range f.notifications.items {
		if n.Type != models.NotificationMatchSchedule {
			t.Errorf("notification type = %s, want match_schedule", n.Type)
		}
		if !n.NotificationDate.Equal(wantDate) {
			t.Errorf("notification date = %v, want %v", n.NotificationDate, wantDate)
		}
	}
}

func TestRegisterDuplicateRejected(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	team := f.addTeam(t, "Alpha", 11)

	if _, _, err := f.svc.Register(context.Background(), tournament.ID, 11, models.ModeTeam, &team.ID); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, _, err := f.svc.Register(context.Background(), tournament.ID, 11, models.ModeTeam, &team.ID)
	if !errors.Is(err, ErrRegistrationConflict) {
		t.Fatalf("expected ErrRegistrationConflict, got %v", err)
	}
}

func TestRegisterCapacityPerMode(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 2, nil)

	for i := 1; i <= 2; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, 10+i, models.ModeTeam, &team.ID); err != nil {
			t.Fatalf("register team %d: %v", i, err)
		}
	}

	third := f.addTeam(t, "Team 3", 13)
	_, _, err := f.svc.Register(context.Background(), tournament.ID, 13, models.ModeTeam, &third.ID)
	if !errors.Is(err, ErrTournamentFull) {
		t.Fatalf("expected ErrTournamentFull, got %v", err)
	}
}

func TestRegisterTeamRequiresCaptain(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	team := f.addTeam(t, "Alpha", 11)

	_, _, err := f.svc.Register(context.Background(), tournament.ID, 99, models.ModeTeam, &team.ID)
	if !errors.Is(err, ErrUserMustBeCaptain) {
		t.Fatalf("expected ErrUserMustBeCaptain, got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	team := f.addTeam(t, "Alpha", 11)

	if _, _, err := f.svc.Register(context.Background(), tournament.ID, 11, models.ModeTeam, &team.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.svc.Withdraw(context.Background(), tournament.ID, 11, models.ModeTeam, &team.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	err := f.svc.Withdraw(context.Background(), tournament.ID, 11, models.ModeTeam, &team.ID)
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound after withdrawal, got %v", err)
	}
}

func TestGenerateMatchesOrganizerOnly(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	for i := 1; i <= 2; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, 10+i, models.ModeTeam, &team.ID); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	if _, err := f.svc.GenerateMatches(context.Background(), tournament.ID, 42, models.PhaseQualifier); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation for non-organizer, got %v", err)
	}
	if _, err := f.svc.GenerateMatches(context.Background(), tournament.ID, organizerID, models.PhaseBracket); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase for bracket phase, got %v", err)
	}

	result, err := f.svc.GenerateMatches(context.Background(), tournament.ID, organizerID, models.PhaseQualifier)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Count != 1 || result.Phase != models.PhaseQualifier {
		t.Fatalf("unexpected result: count=%d phase=%s", result.Count, result.Phase)
	}
}

func TestGenerateMatchesTwiceRejected(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	for i := 1; i <= 3; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, 10+i, models.ModeTeam, &team.ID); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	if _, err := f.svc.GenerateMatches(context.Background(), tournament.ID, organizerID, models.PhaseQualifier); err != nil {
		t.Fatalf("first generation: %v", err)
	}
	_, err := f.svc.GenerateMatches(context.Background(), tournament.ID, organizerID, models.PhaseQualifier)
	if !errors.Is(err, ErrMatchesAlreadyGenerated) {
		t.Fatalf("expected ErrMatchesAlreadyGenerated, got %v", err)
	}

	// Матчи первой генерации не задеты.
	matches, err := f.svc.ListMatches(context.Background(), tournament.ID, repositories.ListMatchesFilter{})
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches to survive, got %d", len(matches))
	}
}

// Жеребьёвка квалификации игнорирует индивидуальные заявки.
func TestGenerateMatchesSkipsIndividualEntries(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)

	teamIDs := make(map[int]bool)
	for i := 1; i <= 3; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		teamIDs[team.ID] = true
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, 10+i, models.ModeTeam, &team.ID); err != nil {
			t.Fatalf("register team: %v", err)
		}
	}
	for _, userID := range []int{51, 52} {
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, userID, models.ModeIndividual, nil); err != nil {
			t.Fatalf("register individual %d: %v", userID, err)
		}
	}

	result, err := f.svc.GenerateMatches(context.Background(), tournament.ID, organizerID, models.PhaseQualifier)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Count != 3 {
		t.Fatalf("expected C(3,2)=3 matches, got %d", result.Count)
	}
	for _, m := range result.Matches {
		if m.Team1ID == nil || m.Team2ID == nil || !teamIDs[*m.Team1ID] || !teamIDs[*m.Team2ID] {
			t.Errorf("match %d pairs non-team entity: %+v", m.MatchNumber, m)
		}
		if m.Player1ID != nil || m.Player2ID != nil {
			t.Errorf("match %d has player sides in team draw", m.MatchNumber)
		}
	}
}

func TestGenerateMatchesIndividualOnlyFails(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	for _, userID := range []int{51, 52, 53} {
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, userID, models.ModeIndividual, nil); err != nil {
			t.Fatalf("register individual %d: %v", userID, err)
		}
	}

	_, err := f.svc.GenerateMatches(context.Background(), tournament.ID, organizerID, models.PhaseQualifier)
	if !errors.Is(err, ErrNotEnoughParticipants) {
		t.Fatalf("expected ErrNotEnoughParticipants, got %v", err)
	}
}

// addCompletedQualifier вставляет завершённый матч квалификации напрямую.
func (f *fixture) addCompletedQualifier(t *testing.T, tournamentID, team1, team2, score1, score2 int) {
	t.Helper()
	m := &models.Match{
		TournamentID: tournamentID,
		Phase:        models.PhaseQualifier,
		Round:        1,
		MatchNumber:  f.matches.seq + 1,
		Team1ID:      intPtr(team1),
		Team2ID:      intPtr(team2),
		Score1:       intPtr(score1),
		Score2:       intPtr(score2),
		Status:       models.MatchStatusCompleted,
	}
	if err := f.matches.Create(context.Background(), nil, m); err != nil {
		t.Fatalf("failed to seed match: %v", err)
	}
}

func TestGenerateBracketSeedsFromStandings(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)

	for i := 1; i <= 4; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, 10+i, models.ModeTeam, &team.ID); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	// Команда 1 выигрывает всё, 2 — два матча, 3 — один, 4 — ничего.
	f.addCompletedQualifier(t, tournament.ID, 1, 2, 2, 0)
	f.addCompletedQualifier(t, tournament.ID, 1, 3, 3, 1)
	f.addCompletedQualifier(t, tournament.ID, 1, 4, 1, 0)
	f.addCompletedQualifier(t, tournament.ID, 2, 3, 2, 1)
	f.addCompletedQualifier(t, tournament.ID, 2, 4, 3, 0)
	f.addCompletedQualifier(t, tournament.ID, 3, 4, 2, 0)

	result, err := f.svc.GenerateBracket(context.Background(), tournament.ID, organizerID, BracketInput{AdvancingTeams: 4})
	if err != nil {
		t.Fatalf("generate bracket: %v", err)
	}
	if result.Rounds != 2 || result.TotalMatches != 3 {
		t.Fatalf("rounds=%d total=%d, want 2 and 3", result.Rounds, result.TotalMatches)
	}

	// Посев 1-vs-4, 2-vs-3; финал — заготовка.
	first := result.Matches[0]
	second := result.Matches[1]
	final := result.Matches[2]
	if *first.Team1ID != 1 || *first.Team2ID != 4 {
		t.Errorf("first semifinal: got %d vs %d, want 1 vs 4", *first.Team1ID, *first.Team2ID)
	}
	if *second.Team1ID != 2 || *second.Team2ID != 3 {
		t.Errorf("second semifinal: got %d vs %d, want 2 vs 3", *second.Team1ID, *second.Team2ID)
	}
	if final.Team1ID != nil || final.Team2ID != nil {
		t.Errorf("final should be an empty placeholder, got %+v", final)
	}
	if final.Status != models.MatchStatusPending {
		t.Errorf("final status = %s, want pending", final.Status)
	}
	for _, m := range result.Matches {
		if m.Phase != models.PhaseBracket {
			t.Errorf("match %d phase = %s, want tournament", m.MatchNumber, m.Phase)
		}
	}

	// Номера продолжают счётчик квалификации (6 сыгранных матчей).
	if first.MatchNumber != 7 {
		t.Errorf("first bracket match number = %d, want 7", first.MatchNumber)
	}

	// Повторная генерация сетки отклоняется.
	if _, err := f.svc.GenerateBracket(context.Background(), tournament.ID, organizerID, BracketInput{AdvancingTeams: 4}); !errors.Is(err, ErrMatchesAlreadyGenerated) {
		t.Fatalf("expected ErrMatchesAlreadyGenerated, got %v", err)
	}
}

func TestGenerateBracketExplicitSeedingValidated(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	for i := 1; i <= 2; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, 10+i, models.ModeTeam, &team.ID); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	_, err := f.svc.GenerateBracket(context.Background(), tournament.ID, organizerID, BracketInput{Seeding: []int{1, 999}})
	if !errors.Is(err, ErrSeedingNotRegistered) {
		t.Fatalf("expected ErrSeedingNotRegistered, got %v", err)
	}

	// Дважды посеянная команда дала бы матч команды с самой собой.
	_, err = f.svc.GenerateBracket(context.Background(), tournament.ID, organizerID, BracketInput{Seeding: []int{1, 1}})
	if !errors.Is(err, ErrSeedingDuplicate) {
		t.Fatalf("expected ErrSeedingDuplicate, got %v", err)
	}
	if matches, _ := f.matches.ListByTournament(context.Background(), tournament.ID, repositories.ListMatchesFilter{}); len(matches) != 0 {
		t.Fatalf("rejected seeding must not persist matches, got %d", len(matches))
	}

	result, err := f.svc.GenerateBracket(context.Background(), tournament.ID, organizerID, BracketInput{Seeding: []int{2, 1}})
	if err != nil {
		t.Fatalf("generate bracket with explicit seeding: %v", err)
	}
	if result.TotalMatches != 1 {
		t.Fatalf("expected a single final, got %d matches", result.TotalMatches)
	}
	if *result.Matches[0].Team1ID != 2 || *result.Matches[0].Team2ID != 1 {
		t.Errorf("explicit seeding not honored: %+v", result.Matches[0])
	}
}

func TestUpdateMatchAuthorization(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	for i := 1; i <= 2; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, 10+i, models.ModeTeam, &team.ID); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	result, err := f.svc.GenerateMatches(context.Background(), tournament.ID, organizerID, models.PhaseQualifier)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	matchID := result.Matches[0].ID

	// Посторонний не может записать результат.
	input := MatchUpdateInput{Score1: intPtr(2), Score2: intPtr(1)}
	if _, err := f.svc.UpdateMatch(context.Background(), 77, tournament.ID, matchID, input); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation for stranger, got %v", err)
	}

	// Капитан первой команды — может.
	captain := 10 + *result.Matches[0].Team1ID
	updated, err := f.svc.UpdateMatch(context.Background(), captain, tournament.ID, matchID, input)
	if err != nil {
		t.Fatalf("captain update: %v", err)
	}
	if updated.Status != models.MatchStatusCompleted {
		t.Errorf("status = %s, want completed", updated.Status)
	}
	if *updated.Score1 != 2 || *updated.Score2 != 1 {
		t.Errorf("score = %d:%d, want 2:1", *updated.Score1, *updated.Score2)
	}

	// Завершённый матч капитану больше не доступен, организатору — доступен.
	if _, err := f.svc.UpdateMatch(context.Background(), captain, tournament.ID, matchID, input); !errors.Is(err, ErrMatchNotEditable) {
		t.Fatalf("expected ErrMatchNotEditable, got %v", err)
	}
	if _, err := f.svc.UpdateMatch(context.Background(), organizerID, tournament.ID, matchID, MatchUpdateInput{Score1: intPtr(3), Score2: intPtr(1)}); err != nil {
		t.Fatalf("organizer correction: %v", err)
	}

	// Стороны меняет только организатор.
	sideInput := MatchUpdateInput{Team1ID: intPtr(1)}
	if _, err := f.svc.UpdateMatch(context.Background(), captain, tournament.ID, matchID, sideInput); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation for side change by captain, got %v", err)
	}
}

func TestUpdateMatchFillsPendingSlot(t *testing.T) {
	f := newFixture()
	tournament := f.createTournament(t, 0, nil)
	for i := 1; i <= 4; i++ {
		team := f.addTeam(t, fmt.Sprintf("Team %d", i), 10+i)
		if _, _, err := f.svc.Register(context.Background(), tournament.ID, 10+i, models.ModeTeam, &team.ID); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	result, err := f.svc.GenerateBracket(context.Background(), tournament.ID, organizerID, BracketInput{Seeding: []int{1, 2, 3, 4}})
	if err != nil {
		t.Fatalf("generate bracket: %v", err)
	}
	final := result.Matches[len(result.Matches)-1]
	if final.Status != models.MatchStatusPending {
		t.Fatalf("final should start pending, got %s", final.Status)
	}

	updated, err := f.svc.UpdateMatch(context.Background(), organizerID, tournament.ID, final.ID,
		MatchUpdateInput{Team1ID: intPtr(1), Team2ID: intPtr(3)})
	if err != nil {
		t.Fatalf("fill final slots: %v", err)
	}
	if updated.Status != models.MatchStatusScheduled {
		t.Errorf("filled placeholder status = %s, want scheduled", updated.Status)
	}
	if *updated.Team1ID != 1 || *updated.Team2ID != 3 {
		t.Errorf("final sides = %v vs %v, want 1 vs 3", updated.Team1ID, updated.Team2ID)
	}
}

func TestAutoUpdateStatuses(t *testing.T) {
	f := newFixture()
	now := time.Now()

	past := now.Add(-time.Hour)
	upcoming := f.createTournament(t, 0, &past)

	endPast := now.Add(-time.Minute)
	ongoing := f.createTournament(t, 0, nil)
	if _, err := f.svc.Update(context.Background(), organizerID, models.RoleOrganizer, ongoing.ID,
		TournamentInput{Name: "Spring League", EndDate: &endPast, Status: strPtr("ongoing")}); err != nil {
		t.Fatalf("prepare ongoing tournament: %v", err)
	}

	updated, err := f.svc.AutoUpdateStatuses(context.Background(), now)
	if err != nil {
		t.Fatalf("auto update: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 transitions, got %d", updated)
	}

	got, _ := f.svc.GetByID(context.Background(), upcoming.ID)
	if got.Status != models.TournamentStatusOngoing {
		t.Errorf("upcoming tournament status = %s, want ongoing", got.Status)
	}
	got, _ = f.svc.GetByID(context.Background(), ongoing.ID)
	if got.Status != models.TournamentStatusCompleted {
		t.Errorf("ongoing tournament status = %s, want completed", got.Status)
	}
}

func strPtr(s string) *string { return &s }
