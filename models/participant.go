package models

import "time"

type ParticipantMode string

const (
	ModeTeam       ParticipantMode = "team"
	ModeIndividual ParticipantMode = "individual"
)

type ParticipantStatus string

const (
	// Снятие с турнира реализовано удалением строки, отдельного статуса нет.
	StatusRegistered ParticipantStatus = "registered"
)

// Participant связывает турнир с командой или отдельным игроком.
// Ровно одно из полей TeamID/UserID должно быть заполнено, в зависимости от Mode.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	Mode         ParticipantMode   `json:"mode" db:"mode"`
	TeamID       *int              `json:"team_id,omitempty" db:"team_id"`
	UserID       *int              `json:"user_id,omitempty" db:"user_id"`
	Status       ParticipantStatus `json:"status" db:"status"`
	RegisteredAt time.Time         `json:"registered_at" db:"registered_at"`

	Team *Team `json:"team,omitempty" db:"-"`
	User *User `json:"user,omitempty" db:"-"`
}

// EntityID возвращает идентификатор стороны (команды или игрока) по режиму.
func (p *Participant) EntityID() int {
	if p.Mode == ModeTeam && p.TeamID != nil {
		return *p.TeamID
	}
	if p.UserID != nil {
		return *p.UserID
	}
	return 0
}
