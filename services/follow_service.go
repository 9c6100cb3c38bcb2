package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

type FollowService interface {
	Follow(ctx context.Context, followerID, followeeID int) error
	Unfollow(ctx context.Context, followerID, followeeID int) error
	ListFollowing(ctx context.Context, userID int) ([]models.User, error)
	ListFollowers(ctx context.Context, userID int) ([]models.User, error)
}

type followService struct {
	followRepo repositories.FollowRepository
	userRepo   repositories.UserRepository
}

func NewFollowService(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) FollowService {
	return &followService{followRepo: followRepo, userRepo: userRepo}
}

func (s *followService) Follow(ctx context.Context, followerID, followeeID int) error {
	if followerID == followeeID {
		return ErrSelfFollowForbidden
	}
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("ошибка проверки пользователя: %w", err)
	}

	if err := s.followRepo.Create(ctx, followerID, followeeID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrFollowConflict):
			return ErrAlreadyFollowing
		case errors.Is(err, repositories.ErrUserNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("ошибка создания подписки: %w", err)
	}
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followeeID int) error {
	if err := s.followRepo.Delete(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, repositories.ErrFollowNotFound) {
			return ErrFollowNotFound
		}
		return fmt.Errorf("ошибка удаления подписки: %w", err)
	}
	return nil
}

func (s *followService) ListFollowing(ctx context.Context, userID int) ([]models.User, error) {
	ids, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения подписок: %w", err)
	}
	return s.userRepo.ListByIDs(ctx, ids)
}

func (s *followService) ListFollowers(ctx context.Context, userID int) ([]models.User, error) {
	ids, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения подписчиков: %w", err)
	}
	return s.userRepo.ListByIDs(ctx, ids)
}
