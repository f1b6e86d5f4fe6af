package models

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusPlanning         TournamentStatus = "PLANNING"
	StatusRegistrationOpen TournamentStatus = "REGISTRATION_OPEN"
	StatusInProgress       TournamentStatus = "IN_PROGRESS"
	StatusCompleted        TournamentStatus = "COMPLETED"
)

// Tournament is read-only for the round subsystem; status is owned by the organizer flow.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Status          TournamentStatus `json:"status" db:"status"`
	OrganizerID     int              `json:"organizer_id" db:"organizer_id"`
	CourseID        int              `json:"course_id" db:"course_id"`
	MaxParticipants *int             `json:"max_participants,omitempty" db:"max_participants"`

	// Текущий состав участников (user ids), заполняется репозиторием по запросу
	ParticipantIDs []int `json:"participant_ids,omitempty" db:"-"`
}

func (t *Tournament) IsOrganizer(userID int) bool {
	return t != nil && userID > 0 && t.OrganizerID == userID
}
