package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// Tournament представляет турнир.
// MaxParticipants == 0 означает отсутствие лимита на число участников.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Sport           string           `json:"sport" db:"sport"`
	Description     *string          `json:"description,omitempty" db:"description"`
	Location        *string          `json:"location,omitempty" db:"location"`
	OrganizerID     int              `json:"organizer_id" db:"organizer_id"`
	RegDeadline     *time.Time       `json:"reg_deadline,omitempty" db:"reg_deadline"`
	StartDate       *time.Time       `json:"start_date,omitempty" db:"start_date"`
	EndDate         *time.Time       `json:"end_date,omitempty" db:"end_date"`
	Status          TournamentStatus `json:"status" db:"status"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer    *User         `json:"organizer,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}
