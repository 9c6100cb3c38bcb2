package services

import (
	"sort"

	"github.com/sportlink/sportlink-backend/models"
)

type standingKey struct {
	mode     models.ParticipantMode
	entityID int
}

// ComputeStandings — чистая свёртка по завершённым матчам квалификации.
// Каждый зарегистрированный участник получает нулевую строку, даже если не
// сыграл ни одного матча. Очки 3/1/0, сортировка стабильная: очки, затем
// разница мячей, затем забитые. Функция детерминирована и идемпотентна.
func ComputeStandings(participants []*models.Participant, matches []*models.Match) []models.Standing {
	index := make(map[standingKey]int, len(participants))
	standings := make([]models.Standing, 0, len(participants))

	for _, p := range participants {
		key := standingKey{mode: p.Mode, entityID: p.EntityID()}
		if _, ok := index[key]; ok {
			continue
		}
		s := models.Standing{Mode: p.Mode}
		if p.Mode == models.ModeTeam {
			s.TeamID = p.TeamID
		} else {
			s.UserID = p.UserID
		}
		index[key] = len(standings)
		standings = append(standings, s)
	}

	for _, m := range matches {
		if m.Phase != models.PhaseQualifier || m.Status != models.MatchStatusCompleted {
			continue
		}
		if m.Score1 == nil || m.Score2 == nil {
			continue
		}

		var mode models.ParticipantMode
		var id1, id2 *int
		switch {
		case m.Team1ID != nil && m.Team2ID != nil:
			mode, id1, id2 = models.ModeTeam, m.Team1ID, m.Team2ID
		case m.Player1ID != nil && m.Player2ID != nil:
			mode, id1, id2 = models.ModeIndividual, m.Player1ID, m.Player2ID
		default:
			continue // заготовка без сторон
		}

		applyResult(standings, index, standingKey{mode, *id1}, *m.Score1, *m.Score2)
		applyResult(standings, index, standingKey{mode, *id2}, *m.Score2, *m.Score1)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})

	return standings
}

func applyResult(standings []models.Standing, index map[standingKey]int, key standingKey, scored, conceded int) {
	i, ok := index[key]
	if !ok {
		// Матч ссылается на снявшегося участника — в таблицу не попадает.
		return
	}
	s := &standings[i]
	s.Played++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	switch {
	case scored > conceded:
		s.Wins++
		s.Points += 3
	case scored == conceded:
		s.Draws++
		s.Points++
	default:
		s.Losses++
	}
}
