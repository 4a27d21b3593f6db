package models

import "time"

type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Content   string    `json:"content" gorm:"size:280;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// PostLike represents a like on a post
type PostLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_like;not null"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_post_user_like;not null"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=280"`
}
