package models

import "time"

// Message is a direct message between two users.
type Message struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SenderID    uint      `json:"sender_id" gorm:"index;not null"`
	RecipientID uint      `json:"recipient_id" gorm:"index;not null"`
	Content     string    `json:"content" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`

	Sender    *User `json:"-" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Recipient *User `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
}

type SendMessageRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,min=1,max=2000"`
}
