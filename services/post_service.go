package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

const maxPostLength = 4000

type PostService interface {
	Create(ctx context.Context, authorID int, content string) (*models.Post, error)
	GetByID(ctx context.Context, viewerID, postID int) (*models.Post, error)
	Feed(ctx context.Context, viewerID, limit, offset int) ([]models.Post, error)
	Delete(ctx context.Context, actorID int, actorRole models.UserRole, postID int) error

	Like(ctx context.Context, userID, postID int) error
	Unlike(ctx context.Context, userID, postID int) error

	AddComment(ctx context.Context, authorID, postID int, content string) (*models.PostComment, error)
	ListComments(ctx context.Context, postID int) ([]models.PostComment, error)
	DeleteComment(ctx context.Context, actorID int, actorRole models.UserRole, commentID int) error
}

type postService struct {
	postRepo   repositories.PostRepository
	followRepo repositories.FollowRepository
}

func NewPostService(postRepo repositories.PostRepository, followRepo repositories.FollowRepository) PostService {
	return &postService{postRepo: postRepo, followRepo: followRepo}
}

func (s *postService) Create(ctx context.Context, authorID int, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrPostContentRequired
	}
	if len(content) > maxPostLength {
		return nil, ErrValidationFailed
	}

	post := &models.Post{AuthorID: authorID, Content: content}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("ошибка создания поста: %w", err)
	}
	return s.GetByID(ctx, authorID, post.ID)
}

func (s *postService) GetByID(ctx context.Context, viewerID, postID int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("ошибка получения поста: %w", err)
	}
	return post, nil
}

// Feed — посты автора и тех, на кого он подписан, новые первыми.
func (s *postService) Feed(ctx context.Context, viewerID, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	following, err := s.followRepo.ListFollowing(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения подписок: %w", err)
	}
	authorIDs := append(following, viewerID)

	return s.postRepo.ListFeed(ctx, viewerID, authorIDs, limit, offset)
}

func (s *postService) Delete(ctx context.Context, actorID int, actorRole models.UserRole, postID int) error {
	post, err := s.GetByID(ctx, actorID, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID && actorRole != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *postService) Like(ctx context.Context, userID, postID int) error {
	if err := s.postRepo.AddLike(ctx, postID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPostLikeConflict):
			return ErrPostAlreadyLiked
		case errors.Is(err, repositories.ErrPostNotFound):
			return ErrPostNotFound
		}
		return fmt.Errorf("ошибка лайка: %w", err)
	}
	return nil
}

func (s *postService) Unlike(ctx context.Context, userID, postID int) error {
	if err := s.postRepo.RemoveLike(ctx, postID, userID); err != nil {
		if errors.Is(err, repositories.ErrPostLikeNotFound) {
			return ErrNotLiked
		}
		return fmt.Errorf("ошибка снятия лайка: %w", err)
	}
	return nil
}

func (s *postService) AddComment(ctx context.Context, authorID, postID int, content string) (*models.PostComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentContentRequired
	}

	if _, err := s.GetByID(ctx, authorID, postID); err != nil {
		return nil, err
	}

	comment := &models.PostComment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("ошибка создания комментария: %w", err)
	}
	return comment, nil
}

func (s *postService) ListComments(ctx context.Context, postID int) ([]models.PostComment, error) {
	return s.postRepo.ListComments(ctx, postID)
}

// DeleteComment: комментарий удаляет его автор или админ.
func (s *postService) DeleteComment(ctx context.Context, actorID int, actorRole models.UserRole, commentID int) error {
	comment, err := s.postRepo.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("ошибка получения комментария: %w", err)
	}
	if comment.AuthorID != actorID && actorRole != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	return s.postRepo.DeleteComment(ctx, commentID)
}
