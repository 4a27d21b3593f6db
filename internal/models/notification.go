package models

import "time"

// Verb is the kind of event a notification records.
type Verb string

const (
	VerbFollow      Verb = "follow"
	VerbMessage     Verb = "message"
	VerbPostLike    Verb = "post_like"
	VerbComment     Verb = "comment"
	VerbCommentLike Verb = "comment_like"
	VerbReply       Verb = "reply"
	VerbReplyLike   Verb = "reply_like"
)

var Verbs = []Verb{
	VerbFollow,
	VerbMessage,
	VerbPostLike,
	VerbComment,
	VerbCommentLike,
	VerbReply,
	VerbReplyLike,
}

func (v Verb) Valid() bool {
	for _, known := range Verbs {
		if v == known {
			return true
		}
	}
	return false
}

// Notification is an event addressed to Recipient. Actor and Target are two
// independent polymorphic references; only Read changes after insert.
type Notification struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RecipientID uint       `json:"recipient" gorm:"not null;index:idx_notifications_recipient_created,priority:1;index:idx_notifications_recipient_read,priority:1"`
	ActorKind   EntityKind `json:"actor_kind" gorm:"size:30;not null"`
	ActorID     uint       `json:"actor_id" gorm:"not null"`
	TargetKind  EntityKind `json:"target_kind" gorm:"size:30;not null"`
	TargetID    uint       `json:"target_id" gorm:"not null"`
	Verb        Verb       `json:"verb" gorm:"size:20;not null"`
	Read        bool       `json:"read" gorm:"column:is_read;not null;default:false;index:idx_notifications_recipient_read,priority:2"`
	CreatedAt   time.Time  `json:"timestamp" gorm:"not null;index:idx_notifications_recipient_created,priority:2"`

	Recipient *User `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
}

func (n *Notification) ActorRef() EntityRef {
	return EntityRef{Kind: n.ActorKind, ID: n.ActorID}
}

func (n *Notification) TargetRef() EntityRef {
	return EntityRef{Kind: n.TargetKind, ID: n.TargetID}
}
