package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

type TeamService interface {
	Create(ctx context.Context, captainID int, input TeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context, limit, offset int) ([]models.Team, error)
	Update(ctx context.Context, actorID, teamID int, input TeamInput) (*models.Team, error)
	Delete(ctx context.Context, actorID, teamID int) error
	RemoveMember(ctx context.Context, actorID, teamID, userID int) error
}

type TeamInput struct {
	Name  string `json:"name"`
	Sport string `json:"sport"`
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
}

func NewTeamService(teamRepo repositories.TeamRepository, userRepo repositories.UserRepository) TeamService {
	return &teamService{teamRepo: teamRepo, userRepo: userRepo}
}

// Create создаёт команду; создатель становится капитаном и первым участником.
func (s *teamService) Create(ctx context.Context, captainID int, input TeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		Name:      name,
		Sport:     strings.TrimSpace(input.Sport),
		CaptainID: captainID,
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamCaptainInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка создания команды: %w", err)
	}

	if err := s.teamRepo.AddMember(ctx, team.ID, captainID); err != nil &&
		!errors.Is(err, repositories.ErrTeamMemberConflict) {
		return nil, fmt.Errorf("ошибка добавления капитана в состав: %w", err)
	}

	return s.GetByID(ctx, team.ID)
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("ошибка получения команды: %w", err)
	}

	members, err := s.teamRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения состава команды: %w", err)
	}
	team.Members = members

	return team, nil
}

func (s *teamService) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.teamRepo.List(ctx, limit, offset)
}

func (s *teamService) Update(ctx context.Context, actorID, teamID int, input TeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("ошибка получения команды: %w", err)
	}
	if team.CaptainID != actorID {
		return nil, ErrCaptainActionForbidden
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		team.Name = name
	}
	if sport := strings.TrimSpace(input.Sport); sport != "" {
		team.Sport = sport
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("ошибка обновления команды: %w", err)
	}
	return s.GetByID(ctx, teamID)
}

func (s *teamService) Delete(ctx context.Context, actorID, teamID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("ошибка получения команды: %w", err)
	}
	if team.CaptainID != actorID {
		return ErrCaptainActionForbidden
	}
	return s.teamRepo.Delete(ctx, teamID)
}

// RemoveMember: капитан исключает любого, кроме себя; участник выходит сам.
func (s *teamService) RemoveMember(ctx context.Context, actorID, teamID, userID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("ошибка получения команды: %w", err)
	}

	if userID == team.CaptainID {
		return ErrCaptainActionForbidden
	}
	if actorID != team.CaptainID && actorID != userID {
		return ErrForbiddenOperation
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("ошибка исключения из команды: %w", err)
	}
	return nil
}
