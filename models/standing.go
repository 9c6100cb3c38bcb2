package models

// Standing — вычисляемая строка таблицы квалификации, в БД не хранится.
type Standing struct {
	Mode           ParticipantMode `json:"mode"`
	TeamID         *int            `json:"team_id,omitempty"`
	UserID         *int            `json:"user_id,omitempty"`
	Played         int             `json:"played"`
	Wins           int             `json:"wins"`
	Draws          int             `json:"draws"`
	Losses         int             `json:"losses"`
	Points         int             `json:"points"`
	GoalsFor       int             `json:"goals_for"`
	GoalsAgainst   int             `json:"goals_against"`
	GoalDifference int             `json:"goal_difference"`
}
