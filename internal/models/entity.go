package models

import (
	"fmt"
	"unicode/utf8"
)

// EntityKind tags which table a polymorphic reference points into.
type EntityKind string

const (
	KindUser             EntityKind = "user"
	KindPost             EntityKind = "post"
	KindComment          EntityKind = "comment"
	KindCommentReply     EntityKind = "comment_reply"
	KindCommentReplyLike EntityKind = "comment_reply_like"
)

// EntityKinds is the closed set of kinds a notification may reference.
var EntityKinds = []EntityKind{
	KindUser,
	KindPost,
	KindComment,
	KindCommentReply,
	KindCommentReplyLike,
}

func (k EntityKind) String() string { return string(k) }

func (k EntityKind) Valid() bool {
	for _, known := range EntityKinds {
		if k == known {
			return true
		}
	}
	return false
}

// EntityRef is a (kind, id) pair pointing at one row of one entity table.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   uint       `json:"id"`
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Entity is implemented only by the entity types in this package, so a
// switch over it is exhaustive over EntityKinds.
type Entity interface {
	Ref() EntityRef
	Summary() string
	isEntity()
}

func (u *User) Ref() EntityRef             { return EntityRef{Kind: KindUser, ID: u.ID} }
func (p *Post) Ref() EntityRef             { return EntityRef{Kind: KindPost, ID: p.ID} }
func (c *Comment) Ref() EntityRef          { return EntityRef{Kind: KindComment, ID: c.ID} }
func (r *CommentReply) Ref() EntityRef     { return EntityRef{Kind: KindCommentReply, ID: r.ID} }
func (l *CommentReplyLike) Ref() EntityRef { return EntityRef{Kind: KindCommentReplyLike, ID: l.ID} }

func (*User) isEntity()             {}
func (*Post) isEntity()             {}
func (*Comment) isEntity()          {}
func (*CommentReply) isEntity()     {}
func (*CommentReplyLike) isEntity() {}

func (u *User) Summary() string {
	return "@" + u.Username
}

func (p *Post) Summary() string {
	return fmt.Sprintf("post %q", truncate(p.Content, 40))
}

func (c *Comment) Summary() string {
	return fmt.Sprintf("comment %q", truncate(c.Content, 40))
}

func (r *CommentReply) Summary() string {
	return fmt.Sprintf("reply %q", truncate(r.Content, 40))
}

func (l *CommentReplyLike) Summary() string {
	return fmt.Sprintf("like on reply #%d", l.ReplyID)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
