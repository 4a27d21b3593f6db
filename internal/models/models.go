package models

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Post{},
		&PostLike{},
		&Comment{},
		&CommentLike{},
		&CommentReply{},
		&CommentReplyLike{},
		&Message{},
		&Follow{},
		&Notification{},
	}
}
