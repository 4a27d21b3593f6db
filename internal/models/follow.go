package models

import "time"

// Follow represents an Instagram-style follow relationship
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following;not null"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following;not null"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  *User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following *User `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}
