package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

type MatchPhase string

const (
	PhaseQualifier MatchPhase = "qualifier"
	PhaseBracket   MatchPhase = "tournament"
)

// Match принадлежит турниру. Стороны задаются либо парой Team1ID/Team2ID,
// либо парой Player1ID/Player2ID — взаимоисключающе по режиму участников.
// У матчей-заготовок поздних раундов сетки обе стороны пустые до заполнения.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	Round        int         `json:"round" db:"round"`
	Phase        MatchPhase  `json:"phase" db:"phase"`
	Team1ID      *int        `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *int        `json:"team2_id,omitempty" db:"team2_id"`
	Player1ID    *int        `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID    *int        `json:"player2_id,omitempty" db:"player2_id"`
	Score1       *int        `json:"score1,omitempty" db:"score1"`
	Score2       *int        `json:"score2,omitempty" db:"score2"`
	Status       MatchStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// HasSide сообщает, участвует ли сущность (команда или игрок) в матче.
func (m *Match) HasSide(mode ParticipantMode, entityID int) bool {
	if mode == ModeTeam {
		return (m.Team1ID != nil && *m.Team1ID == entityID) ||
			(m.Team2ID != nil && *m.Team2ID == entityID)
	}
	return (m.Player1ID != nil && *m.Player1ID == entityID) ||
		(m.Player2ID != nil && *m.Player2ID == entityID)
}
