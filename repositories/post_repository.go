package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sportlink/sportlink-backend/models"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrPostLikeConflict = errors.New("post already liked by this user")
	ErrPostLikeNotFound = errors.New("post like not found")
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int, viewerID int) (*models.Post, error)
	ListFeed(ctx context.Context, viewerID int, authorIDs []int, limit, offset int) ([]models.Post, error)
	Delete(ctx context.Context, id int) error
	AddLike(ctx context.Context, postID, userID int) error
	RemoveLike(ctx context.Context, postID, userID int) error
	AddComment(ctx context.Context, comment *models.PostComment) error
	ListComments(ctx context.Context, postID int) ([]models.PostComment, error)
	DeleteComment(ctx context.Context, id int) error
	GetComment(ctx context.Context, id int) (*models.PostComment, error)
}

type postgresPostRepository struct {
	db *sql.DB
}

func NewPostgresPostRepository(db *sql.DB) PostRepository {
	return &postgresPostRepository{db: db}
}

func (r *postgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (author_id, content)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, post.AuthorID, post.Content).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

const postSelect = `
	SELECT p.id, p.author_id, p.content, p.created_at,
		(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
		(SELECT COUNT(*) FROM post_comments pc WHERE pc.post_id = p.id) AS comment_count,
		EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $1) AS liked_by_me
	FROM posts p`

func (r *postgresPostRepository) GetByID(ctx context.Context, id int, viewerID int) (*models.Post, error) {
	query := postSelect + ` WHERE p.id = $2`

	var p models.Post
	err := r.db.QueryRowContext(ctx, query, viewerID, id).Scan(
		&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt,
		&p.LikeCount, &p.CommentCount, &p.LikedByMe,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &p, nil
}

// ListFeed возвращает посты указанных авторов (лента подписок), новые первыми.
func (r *postgresPostRepository) ListFeed(ctx context.Context, viewerID int, authorIDs []int, limit, offset int) ([]models.Post, error) {
	query := postSelect + `
		WHERE p.author_id = ANY($2)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, viewerID, pq.Array(authorIDs), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt, &p.LikeCount, &p.CommentCount, &p.LikedByMe); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postgresPostRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return checkAffectedRows(result, ErrPostNotFound)
}

func (r *postgresPostRepository) AddLike(ctx context.Context, postID, userID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrPostLikeConflict
			case "23503":
				return ErrPostNotFound
			}
		}
		return fmt.Errorf("failed to add like: %w", err)
	}
	return nil
}

func (r *postgresPostRepository) RemoveLike(ctx context.Context, postID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return checkAffectedRows(result, ErrPostLikeNotFound)
}

func (r *postgresPostRepository) AddComment(ctx context.Context, comment *models.PostComment) error {
	query := `
		INSERT INTO post_comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, comment.PostID, comment.AuthorID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

func (r *postgresPostRepository) ListComments(ctx context.Context, postID int) ([]models.PostComment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.PostComment, 0)
	for rows.Next() {
		var c models.PostComment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *postgresPostRepository) GetComment(ctx context.Context, id int) (*models.PostComment, error) {
	var c models.PostComment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, post_id, author_id, content, created_at FROM post_comments WHERE id = $1`, id).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (r *postgresPostRepository) DeleteComment(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM post_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return checkAffectedRows(result, ErrCommentNotFound)
}
