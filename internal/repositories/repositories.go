package repositories

import "gorm.io/gorm"

// Repositories groups every Postgres-backed repository over one handle.
type Repositories struct {
	Users         UserRepository
	Profiles      UserProfileRepository
	Posts         PostRepository
	PostLikes     LikeRepository
	Comments      CommentRepository
	CommentLikes  CommentLikeRepository
	Replies       CommentReplyRepository
	ReplyLikes    CommentReplyLikeRepository
	Messages      MessageRepository
	Follows       FollowRepository
	Notifications NotificationRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewPostgresUserRepository(db),
		Profiles:      NewPostgresUserProfileRepository(db),
		Posts:         NewPostgresPostRepository(db),
		PostLikes:     NewPostgresLikeRepository(db),
		Comments:      NewPostgresCommentRepository(db),
		CommentLikes:  NewPostgresCommentLikeRepository(db),
		Replies:       NewPostgresCommentReplyRepository(db),
		ReplyLikes:    NewPostgresCommentReplyLikeRepository(db),
		Messages:      NewPostgresMessageRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}
