package services

import (
	"reflect"
	"testing"

	"github.com/sportlink/sportlink-backend/models"
)

func teamParticipant(teamID int) *models.Participant {
	return &models.Participant{
		TournamentID: 1,
		Mode:         models.ModeTeam,
		TeamID:       &teamID,
		Status:       models.StatusRegistered,
	}
}

func completedMatch(team1, team2, score1, score2 int) *models.Match {
	return &models.Match{
		TournamentID: 1,
		Phase:        models.PhaseQualifier,
		Round:        1,
		Team1ID:      &team1,
		Team2ID:      &team2,
		Score1:       &score1,
		Score2:       &score2,
		Status:       models.MatchStatusCompleted,
	}
}

func TestComputeStandingsWorkedExample(t *testing.T) {
	participants := []*models.Participant{
		teamParticipant(1), teamParticipant(2), teamParticipant(3),
	}
	matches := []*models.Match{
		completedMatch(1, 2, 2, 0), // победа 1
		completedMatch(2, 3, 1, 1), // ничья
		completedMatch(1, 3, 0, 1), // победа 3
	}

	standings := ComputeStandings(participants, matches)
	if len(standings) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(standings))
	}

	// Команда 1: 3 очка, РМ +1; команда 3: 4 очка; команда 2: 1 очко.
	if *standings[0].TeamID != 3 || standings[0].Points != 4 {
		t.Errorf("row 0: team %d with %d points, want team 3 with 4", *standings[0].TeamID, standings[0].Points)
	}
	if *standings[1].TeamID != 1 || standings[1].Points != 3 {
		t.Errorf("row 1: team %d with %d points, want team 1 with 3", *standings[1].TeamID, standings[1].Points)
	}
	if *standings[2].TeamID != 2 || standings[2].Points != 1 {
		t.Errorf("row 2: team %d with %d points, want team 2 with 1", *standings[2].TeamID, standings[2].Points)
	}

	first := standings[0]
	if first.Played != 2 || first.Wins != 1 || first.Draws != 1 || first.Losses != 0 {
		t.Errorf("team 3 record = %d/%d/%d/%d, want 2 played 1-1-0", first.Played, first.Wins, first.Draws, first.Losses)
	}
	if first.GoalsFor != 2 || first.GoalsAgainst != 1 || first.GoalDifference != 1 {
		t.Errorf("team 3 goals = %d:%d diff %d, want 2:1 diff 1", first.GoalsFor, first.GoalsAgainst, first.GoalDifference)
	}
}

func TestComputeStandingsTieBreakChain(t *testing.T) {
	participants := []*models.Participant{
		teamParticipant(1), teamParticipant(2), teamParticipant(3), teamParticipant(4),
	}
	// Все по одной победе над «своей» жертвой: очки равны, решает разница,
	// при равной разнице — забитые.
	matches := []*models.Match{
		completedMatch(1, 3, 5, 0),
		completedMatch(2, 4, 3, 0),
		completedMatch(3, 2, 0, 2),
		completedMatch(4, 1, 0, 1),
	}
	// Итог: 1 — 6 очков (РМ +6), 2 — 6 очков (РМ +5), у 3 и 4 по нулям.

	standings := ComputeStandings(participants, matches)
	if *standings[0].TeamID != 1 {
		t.Errorf("leader = team %d, want team 1 on goal difference", *standings[0].TeamID)
	}
	if *standings[1].TeamID != 2 {
		t.Errorf("runner-up = team %d, want team 2", *standings[1].TeamID)
	}
	if standings[0].Points != standings[1].Points {
		t.Fatalf("tie-break test requires equal points, got %d vs %d", standings[0].Points, standings[1].Points)
	}
}

func TestComputeStandingsZeroRowsAndIgnoredMatches(t *testing.T) {
	individualID := 50
	participants := []*models.Participant{
		teamParticipant(1),
		teamParticipant(2),
		{TournamentID: 1, Mode: models.ModeIndividual, UserID: &individualID, Status: models.StatusRegistered},
	}

	pending := completedMatch(1, 2, 0, 0)
	pending.Status = models.MatchStatusScheduled
	bracket := completedMatch(1, 2, 4, 2)
	bracket.Phase = models.PhaseBracket

	standings := ComputeStandings(participants, []*models.Match{pending, bracket})
	if len(standings) != 3 {
		t.Fatalf("expected zero rows for every registered participant, got %d", len(standings))
	}
	for _, s := range standings {
		if s.Played != 0 || s.Points != 0 {
			t.Errorf("non-qualifier or unfinished matches must not count: %+v", s)
		}
	}
}

func TestComputeStandingsDeterministic(t *testing.T) {
	participants := []*models.Participant{
		teamParticipant(1), teamParticipant(2), teamParticipant(3),
	}
	matches := []*models.Match{
		completedMatch(1, 2, 0, 0),
		completedMatch(2, 3, 0, 0),
		completedMatch(1, 3, 0, 0),
	}

	first := ComputeStandings(participants, matches)
	second := ComputeStandings(participants, matches)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input must produce identical standings")
	}

	// Полное равенство показателей — сохраняется порядок участников (stable sort).
	for i, teamID := range []int{1, 2, 3} {
		if *first[i].TeamID != teamID {
			t.Errorf("row %d: team %d, want %d (registration order preserved on full tie)", i, *first[i].TeamID, teamID)
		}
	}
}
