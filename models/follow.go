package models

import "time"

type Follow struct {
	FollowerID int       `json:"follower_id" db:"follower_id"`
	FolloweeID int       `json:"followee_id" db:"followee_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
