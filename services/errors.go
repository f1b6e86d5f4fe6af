package services

import (
	"errors"
	"fmt"
)

// Базовые категории ошибок; HTTP-слой маппит их через errors.Is.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrInvalidState     = errors.New("operation not allowed in the current state")
	ErrForbidden        = errors.New("operation not allowed for the current user")
	ErrOutOfRange       = errors.New("value out of range")
	ErrValidationFailed = errors.New("validation failed")
)

// Ошибки, специфичные для сущностей (дают больше контекста, но матчатся на базовые категории)
var (
	ErrTournamentNotFound    = fmt.Errorf("%w: tournament not found", ErrNotFound)
	ErrCourseNotFound        = fmt.Errorf("%w: course not found", ErrNotFound)
	ErrRoundSessionNotFound  = fmt.Errorf("%w: round session not found", ErrNotFound)
	ErrParticipationNotFound = fmt.Errorf("%w: player has no participation in this round", ErrNotFound)

	ErrTournamentNotInProgress  = fmt.Errorf("%w: tournament is not in progress", ErrInvalidState)
	ErrTournamentNoParticipants = fmt.Errorf("%w: tournament has no participants", ErrInvalidState)
	ErrTournamentNotCompleted   = fmt.Errorf("%w: tournament is not completed", ErrInvalidState)
	ErrRoundNotInProgress       = fmt.Errorf("%w: round session is not in progress", ErrInvalidState)

	ErrNotOrganizer   = fmt.Errorf("%w: only the tournament organizer can perform this action", ErrForbidden)
	ErrNotParticipant = fmt.Errorf("%w: only round participants can perform this action", ErrForbidden)

	ErrHoleOutOfRange = fmt.Errorf("%w: hole number is outside the course", ErrOutOfRange)

	ErrInvalidRoundNumber = fmt.Errorf("%w: round number must be positive", ErrValidationFailed)
	ErrNoEntries          = fmt.Errorf("%w: at least one score entry is required", ErrValidationFailed)
	ErrAllEntriesRejected = fmt.Errorf("%w: all submitted score entries were rejected", ErrValidationFailed)
)
