package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

// Срок действия пригласительной ссылки.
const inviteDuration = 7 * 24 * time.Hour

type InviteService interface {
	CreateInvite(ctx context.Context, actorID, teamID int) (*models.Invite, string, error)
	AcceptInvite(ctx context.Context, actorID int, token string) (*models.Team, error)
}

type inviteService struct {
	inviteRepo repositories.InviteRepository
	teamRepo   repositories.TeamRepository
}

func NewInviteService(inviteRepo repositories.InviteRepository, teamRepo repositories.TeamRepository) InviteService {
	return &inviteService{inviteRepo: inviteRepo, teamRepo: teamRepo}
}

// CreateInvite выдаёт одноразовую ссылку-приглашение. Токен возвращается
// отдельно: в JSON модели он не сериализуется.
func (s *inviteService) CreateInvite(ctx context.Context, actorID, teamID int) (*models.Invite, string, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, "", ErrTeamNotFound
		}
		return nil, "", fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.CaptainID != actorID {
		return nil, "", ErrCaptainActionForbidden
	}

	invite := &models.Invite{
		TeamID:    teamID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(inviteDuration),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, "", fmt.Errorf("failed to create invite: %w", err)
	}
	return invite, invite.Token, nil
}

// AcceptInvite добавляет пользователя в команду по токену и гасит приглашение.
func (s *inviteService) AcceptInvite(ctx context.Context, actorID int, token string) (*models.Team, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}

	if time.Now().After(invite.ExpiresAt) {
		// Просроченное приглашение сразу удаляем.
		_ = s.inviteRepo.Delete(ctx, invite.ID)
		return nil, ErrInviteExpired
	}

	if err := s.teamRepo.AddMember(ctx, invite.TeamID, actorID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamMemberConflict):
			return nil, ErrTeamMemberConflict
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to add member by invite: %w", err)
	}

	if err := s.inviteRepo.Delete(ctx, invite.ID); err != nil && !errors.Is(err, repositories.ErrInviteNotFound) {
		return nil, fmt.Errorf("failed to consume invite: %w", err)
	}

	team, err := s.teamRepo.GetByID(ctx, invite.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team after invite: %w", err)
	}
	return team, nil
}
