package services

import "errors"

// Общие ошибки сервисного слоя; handlers маппят их в HTTP-статусы.
var (
	// Валидация и бизнес-правила
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrInviteExpired          = errors.New("invite has expired")
	ErrRegistrationNotOpen    = errors.New("tournament registration is not open")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrNotEnoughParticipants  = errors.New("not enough participants to generate matches")
	ErrMatchNotEditable       = errors.New("match cannot be updated in its current state")
	ErrInvalidPhase           = errors.New("invalid match phase")
	ErrInvalidAdvancingCount  = errors.New("advancing participants count is invalid")
	ErrSeedingNotRegistered   = errors.New("seeding references an entity not registered for the tournament")
	ErrSeedingDuplicate       = errors.New("seeding contains the same entity more than once")
	ErrSelfFollowForbidden    = errors.New("cannot follow yourself")
	ErrConversationWithSelf   = errors.New("cannot start a conversation with yourself")
	ErrMessageBodyRequired    = errors.New("message body is required")
	ErrPostContentRequired    = errors.New("post content is required")
	ErrCommentContentRequired = errors.New("comment content is required")

	// Конфликты (HTTP 409)
	ErrUserEmailConflict       = errors.New("email address is already in use")
	ErrUserNicknameConflict    = errors.New("nickname is already in use")
	ErrTeamNameConflict        = errors.New("team name is already in use")
	ErrTeamMemberConflict      = errors.New("user is already a member of the team")
	ErrRegistrationConflict    = errors.New("user or team is already registered for this tournament")
	ErrTournamentNameConflict  = errors.New("tournament name already exists")
	ErrMatchesAlreadyGenerated = errors.New("matches already generated for this phase")
	ErrAlreadyFollowing        = errors.New("already following this user")
	ErrPostAlreadyLiked        = errors.New("post already liked")

	// Аутентификация и авторизация
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")
	ErrUserMustBeCaptain      = errors.New("only the team captain can register the team")

	// Отсутствующие сущности
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrParticipantNotFound  = errors.New("participant registration not found")
	ErrInviteNotFound       = errors.New("invite not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrFollowNotFound       = errors.New("follow relationship not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotLiked             = errors.New("post is not liked by this user")

	// Турниры
	ErrTournamentInvalidDateRange = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity  = errors.New("tournament max participants must not be negative")
	ErrTournamentInvalidStatus    = errors.New("invalid tournament status provided")
)
