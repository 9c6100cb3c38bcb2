package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrFollowConflict = errors.New("already following this user")
	ErrFollowNotFound = errors.New("follow relationship not found")
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID int) error
	Delete(ctx context.Context, followerID, followeeID int) error
	ListFollowing(ctx context.Context, followerID int) ([]int, error)
	ListFollowers(ctx context.Context, followeeID int) ([]int, error)
	Exists(ctx context.Context, followerID, followeeID int) (bool, error)
}

type postgresFollowRepository struct {
	db *sql.DB
}

func NewPostgresFollowRepository(db *sql.DB) FollowRepository {
	return &postgresFollowRepository{db: db}
}

func (r *postgresFollowRepository) Create(ctx context.Context, followerID, followeeID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)`, followerID, followeeID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrFollowConflict
			case "23503":
				return ErrUserNotFound
			}
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (r *postgresFollowRepository) Delete(ctx context.Context, followerID, followeeID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return checkAffectedRows(result, ErrFollowNotFound)
}

func (r *postgresFollowRepository) ListFollowing(ctx context.Context, followerID int) ([]int, error) {
	return r.listIDs(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at DESC`, followerID)
}

func (r *postgresFollowRepository) ListFollowers(ctx context.Context, followeeID int) ([]int, error) {
	return r.listIDs(ctx,
		`SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at DESC`, followeeID)
}

func (r *postgresFollowRepository) Exists(ctx context.Context, followerID, followeeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

func (r *postgresFollowRepository) listIDs(ctx context.Context, query string, arg int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
