package models

import "time"

// CommentReply is a reply in a comment's thread.
type CommentReply struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CommentID uint      `json:"comment_id" gorm:"index;not null"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	Comment *Comment `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
	Author  *User    `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

type CommentReplyLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReplyID   uint      `json:"reply_id" gorm:"index;uniqueIndex:idx_reply_user_like;not null"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_reply_user_like;not null"`
	CreatedAt time.Time `json:"created_at"`

	Reply *CommentReply `json:"-" gorm:"foreignKey:ReplyID;constraint:OnDelete:CASCADE"`
	User  *User         `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type CreateReplyRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
