package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Post   *Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Author *User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
