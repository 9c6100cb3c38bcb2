package models

import "time"

type Post struct {
	ID        int       `json:"id" db:"id"`
	AuthorID  int       `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Author       *User `json:"author,omitempty" db:"-"`
	LikeCount    int   `json:"like_count" db:"-"`
	CommentCount int   `json:"comment_count" db:"-"`
	LikedByMe    bool  `json:"liked_by_me" db:"-"`
}

type PostComment struct {
	ID        int       `json:"id" db:"id"`
	PostID    int       `json:"post_id" db:"post_id"`
	AuthorID  int       `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Author *User `json:"author,omitempty" db:"-"`
}
