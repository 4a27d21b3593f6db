package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/repositories"
	"github.com/anonto42/reachout/backend/pkg/zlog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier records notifications on a caller-owned transaction.
type Notifier interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, ev Event) (*models.Notification, error)
	InvalidateUnread(ctx context.Context, recipientID uint)
}

// ActivityService runs the user actions that may notify someone. Each action
// commits its own mutation even when the notification cannot be written.
type ActivityService struct {
	db       *gorm.DB
	repos    *repositories.Repositories
	notifier Notifier
	reporter FailureReporter
	timeout  time.Duration
}

// NewActivityService builds the service. reporter may be nil.
func NewActivityService(
	db *gorm.DB,
	repos *repositories.Repositories,
	notifier Notifier,
	reporter FailureReporter,
	timeout time.Duration,
) *ActivityService {
	return &ActivityService{
		db:       db,
		repos:    repos,
		notifier: notifier,
		reporter: reporter,
		timeout:  timeout,
	}
}

type notifyFunc func(ev Event)

type droppedNotification struct {
	ev    Event
	cause error
}

// run executes fn in one transaction. Notifications queued through notify
// are written under a savepoint so their failure leaves fn's writes intact.
// Cache invalidation and failure reports happen only after commit.
func (s *ActivityService) run(ctx context.Context, op string, fn func(tx *gorm.DB, notify notifyFunc) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		notified []uint
		dropped  []droppedNotification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, func(ev Event) {
			delivered, cause := s.deliver(ctx, tx, ev)
			switch {
			case delivered:
				notified = append(notified, ev.RecipientID)
			case cause != nil:
				dropped = append(dropped, droppedNotification{ev: ev, cause: cause})
			}
		})
	})
	if err != nil {
		return storageErr(op, op, err)
	}
	for _, id := range notified {
		s.notifier.InvalidateUnread(ctx, id)
	}
	if s.reporter != nil {
		for _, d := range dropped {
			s.reporter.ReportFailure(ctx, d.ev, d.cause)
		}
	}
	return nil
}

// deliver writes ev under a savepoint of tx. Self-notifications are skipped
// without a cause.
func (s *ActivityService) deliver(ctx context.Context, tx *gorm.DB, ev Event) (bool, error) {
	if ev.ActorID == ev.RecipientID {
		return false, nil
	}
	err := tx.Transaction(func(sp *gorm.DB) error {
		_, err := s.notifier.CreateInTx(ctx, sp, ev)
		return err
	})
	if err != nil {
		zlog.Error("failed to create notification",
			zap.Uint("recipient_id", ev.RecipientID),
			zap.Uint("actor_id", ev.ActorID),
			zap.String("verb", string(ev.Verb)),
			zap.Error(err))
		return false, err
	}
	return true, nil
}

// FollowUser makes followerID follow followingID and notifies the followed
// user with the follower as target.
func (s *ActivityService) FollowUser(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	if followerID == followingID {
		return nil, validationErr("you can't follow yourself")
	}
	var follow *models.Follow
	err := s.run(ctx, "follow user", func(tx *gorm.DB, notify notifyFunc) error {
		users := s.repos.Users.WithTx(tx)
		follows := s.repos.Follows.WithTx(tx)

		follower, err := users.GetUserByID(ctx, followerID)
		if err != nil {
			return storageErr("get user", fmt.Sprintf("user %d", followerID), err)
		}
		if _, err := users.GetUserByID(ctx, followingID); err != nil {
			return storageErr("get user", fmt.Sprintf("user %d", followingID), err)
		}
		already, err := follows.IsFollowing(ctx, followerID, followingID)
		if err != nil {
			return storageErr("check follow", "follow", err)
		}
		if already {
			return validationErr("you are already following this user")
		}

		follow = &models.Follow{FollowerID: followerID, FollowingID: followingID}
		if err := follows.CreateFollow(ctx, follow); err != nil {
			return storageErr("create follow", "follow", err)
		}
		notify(Event{RecipientID: followingID, ActorID: followerID, Verb: models.VerbFollow, Target: follower})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return follow, nil
}

func (s *ActivityService) UnfollowUser(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return validationErr("you can't unfollow yourself")
	}
	return s.run(ctx, "unfollow user", func(tx *gorm.DB, _ notifyFunc) error {
		if _, err := s.repos.Users.WithTx(tx).GetUserByID(ctx, followingID); err != nil {
			return storageErr("get user", fmt.Sprintf("user %d", followingID), err)
		}
		if err := s.repos.Follows.WithTx(tx).DeleteFollow(ctx, followerID, followingID); err != nil {
			if isRecordNotFound(err) {
				return validationErr("you are not following this user")
			}
			return storageErr("delete follow", "follow", err)
		}
		return nil
	})
}

// Followers lists the users following userID.
func (s *ActivityService) Followers(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	var followers []models.UserCompact
	err := s.run(ctx, "list followers", func(tx *gorm.DB, _ notifyFunc) error {
		if _, err := s.repos.Users.WithTx(tx).GetUserByID(ctx, userID); err != nil {
			return storageErr("get user", fmt.Sprintf("user %d", userID), err)
		}
		users, err := s.repos.Follows.WithTx(tx).GetFollowers(ctx, userID)
		if err != nil {
			return storageErr("list followers", "followers", err)
		}
		followers = make([]models.UserCompact, 0, len(users))
		for i := range users {
			followers = append(followers, users[i].ToCompact())
		}
		return nil
	})
	return followers, err
}

// SendMessage stores a direct message and notifies its recipient with the
// sender as target.
func (s *ActivityService) SendMessage(ctx context.Context, senderID uint, req models.SendMessageRequest) (*models.Message, error) {
	if senderID == req.RecipientID {
		return nil, validationErr("you can't message yourself")
	}
	var message *models.Message
	err := s.run(ctx, "send message", func(tx *gorm.DB, notify notifyFunc) error {
		users := s.repos.Users.WithTx(tx)
		sender, err := users.GetUserByID(ctx, senderID)
		if err != nil {
			return storageErr("get user", fmt.Sprintf("user %d", senderID), err)
		}
		if _, err := users.GetUserByID(ctx, req.RecipientID); err != nil {
			return storageErr("get user", fmt.Sprintf("user %d", req.RecipientID), err)
		}

		message = &models.Message{SenderID: senderID, RecipientID: req.RecipientID, Content: req.Content}
		if err := s.repos.Messages.WithTx(tx).CreateMessage(ctx, message); err != nil {
			return storageErr("create message", "message", err)
		}
		notify(Event{RecipientID: req.RecipientID, ActorID: senderID, Verb: models.VerbMessage, Target: sender})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (s *ActivityService) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{AuthorID: authorID, Content: req.Content}
	err := s.run(ctx, "create post", func(tx *gorm.DB, _ notifyFunc) error {
		if _, err := s.repos.Users.WithTx(tx).GetUserByID(ctx, authorID); err != nil {
			return storageErr("get user", fmt.Sprintf("user %d", authorID), err)
		}
		return storageErr("create post", "post", s.repos.Posts.WithTx(tx).CreatePost(ctx, post))
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post and everything under it. Only the author may.
func (s *ActivityService) DeletePost(ctx context.Context, postID, requesterID uint) error {
	return s.run(ctx, "delete post", func(tx *gorm.DB, _ notifyFunc) error {
		posts := s.repos.Posts.WithTx(tx)
		post, err := posts.GetPostByID(ctx, postID)
		if err != nil {
			return storageErr("get post", fmt.Sprintf("post %d", postID), err)
		}
		if post.AuthorID != requesterID {
			return fmt.Errorf("post %d: %w", postID, ErrForbidden)
		}
		return storageErr("delete post", fmt.Sprintf("post %d", postID), posts.DeletePost(ctx, postID))
	})
}

// LikePost notifies the post author, unless the author liked their own post.
func (s *ActivityService) LikePost(ctx context.Context, postID, userID uint) (*models.PostLike, error) {
	var like *models.PostLike
	err := s.run(ctx, "like post", func(tx *gorm.DB, notify notifyFunc) error {
		post, err := s.repos.Posts.WithTx(tx).GetPostByID(ctx, postID)
		if err != nil {
			return storageErr("get post", fmt.Sprintf("post %d", postID), err)
		}
		likes := s.repos.PostLikes.WithTx(tx)
		liked, err := likes.HasUserLikedPost(ctx, postID, userID)
		if err != nil {
			return storageErr("check post like", "post like", err)
		}
		if liked {
			return fmt.Errorf("post %d already liked: %w", postID, ErrConflict)
		}

		like = &models.PostLike{PostID: postID, UserID: userID}
		if err := likes.CreateLike(ctx, like); err != nil {
			return storageErr("create post like", "post like", err)
		}
		notify(Event{RecipientID: post.AuthorID, ActorID: userID, Verb: models.VerbPostLike, Target: post})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

func (s *ActivityService) UnlikePost(ctx context.Context, postID, userID uint) error {
	return s.run(ctx, "unlike post", func(tx *gorm.DB, _ notifyFunc) error {
		return storageErr("delete post like", fmt.Sprintf("like on post %d", postID),
			s.repos.PostLikes.WithTx(tx).DeleteLike(ctx, postID, userID))
	})
}

// CommentOnPost notifies the post author with the post as target.
func (s *ActivityService) CommentOnPost(ctx context.Context, postID, authorID uint, req models.CreateCommentRequest) (*models.Comment, error) {
	var comment *models.Comment
	err := s.run(ctx, "create comment", func(tx *gorm.DB, notify notifyFunc) error {
		post, err := s.repos.Posts.WithTx(tx).GetPostByID(ctx, postID)
		if err != nil {
			return storageErr("get post", fmt.Sprintf("post %d", postID), err)
		}
		comment = &models.Comment{PostID: postID, AuthorID: authorID, Content: req.Content}
		if err := s.repos.Comments.WithTx(tx).CreateComment(ctx, comment); err != nil {
			return storageErr("create comment", "comment", err)
		}
		notify(Event{RecipientID: post.AuthorID, ActorID: authorID, Verb: models.VerbComment, Target: post})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ActivityService) DeleteComment(ctx context.Context, commentID, requesterID uint) error {
	return s.run(ctx, "delete comment", func(tx *gorm.DB, _ notifyFunc) error {
		comments := s.repos.Comments.WithTx(tx)
		comment, err := comments.GetCommentByID(ctx, commentID)
		if err != nil {
			return storageErr("get comment", fmt.Sprintf("comment %d", commentID), err)
		}
		if comment.AuthorID != requesterID {
			return fmt.Errorf("comment %d: %w", commentID, ErrForbidden)
		}
		return storageErr("delete comment", fmt.Sprintf("comment %d", commentID), comments.DeleteComment(ctx, commentID))
	})
}

func (s *ActivityService) LikeComment(ctx context.Context, commentID, userID uint) (*models.CommentLike, error) {
	var like *models.CommentLike
	err := s.run(ctx, "like comment", func(tx *gorm.DB, notify notifyFunc) error {
		comment, err := s.repos.Comments.WithTx(tx).GetCommentByID(ctx, commentID)
		if err != nil {
			return storageErr("get comment", fmt.Sprintf("comment %d", commentID), err)
		}
		likes := s.repos.CommentLikes.WithTx(tx)
		liked, err := likes.HasUserLikedComment(ctx, commentID, userID)
		if err != nil {
			return storageErr("check comment like", "comment like", err)
		}
		if liked {
			return fmt.Errorf("comment %d already liked: %w", commentID, ErrConflict)
		}

		like = &models.CommentLike{CommentID: commentID, UserID: userID}
		if err := likes.CreateCommentLike(ctx, like); err != nil {
			return storageErr("create comment like", "comment like", err)
		}
		notify(Event{RecipientID: comment.AuthorID, ActorID: userID, Verb: models.VerbCommentLike, Target: comment})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

func (s *ActivityService) UnlikeComment(ctx context.Context, commentID, userID uint) error {
	return s.run(ctx, "unlike comment", func(tx *gorm.DB, _ notifyFunc) error {
		return storageErr("delete comment like", fmt.Sprintf("like on comment %d", commentID),
			s.repos.CommentLikes.WithTx(tx).DeleteCommentLike(ctx, commentID, userID))
	})
}

// ReplyToComment notifies the comment author with the comment as target.
func (s *ActivityService) ReplyToComment(ctx context.Context, commentID, authorID uint, req models.CreateReplyRequest) (*models.CommentReply, error) {
	var reply *models.CommentReply
	err := s.run(ctx, "create reply", func(tx *gorm.DB, notify notifyFunc) error {
		comment, err := s.repos.Comments.WithTx(tx).GetCommentByID(ctx, commentID)
		if err != nil {
			return storageErr("get comment", fmt.Sprintf("comment %d", commentID), err)
		}
		reply = &models.CommentReply{CommentID: commentID, AuthorID: authorID, Content: req.Content}
		if err := s.repos.Replies.WithTx(tx).CreateReply(ctx, reply); err != nil {
			return storageErr("create reply", "reply", err)
		}
		notify(Event{RecipientID: comment.AuthorID, ActorID: authorID, Verb: models.VerbReply, Target: comment})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *ActivityService) DeleteReply(ctx context.Context, replyID, requesterID uint) error {
	return s.run(ctx, "delete reply", func(tx *gorm.DB, _ notifyFunc) error {
		replies := s.repos.Replies.WithTx(tx)
		reply, err := replies.GetReplyByID(ctx, replyID)
		if err != nil {
			return storageErr("get reply", fmt.Sprintf("reply %d", replyID), err)
		}
		if reply.AuthorID != requesterID {
			return fmt.Errorf("reply %d: %w", replyID, ErrForbidden)
		}
		return storageErr("delete reply", fmt.Sprintf("reply %d", replyID), replies.DeleteReply(ctx, replyID))
	})
}

func (s *ActivityService) LikeReply(ctx context.Context, replyID, userID uint) (*models.CommentReplyLike, error) {
	var like *models.CommentReplyLike
	err := s.run(ctx, "like reply", func(tx *gorm.DB, notify notifyFunc) error {
		reply, err := s.repos.Replies.WithTx(tx).GetReplyByID(ctx, replyID)
		if err != nil {
			return storageErr("get reply", fmt.Sprintf("reply %d", replyID), err)
		}
		likes := s.repos.ReplyLikes.WithTx(tx)
		liked, err := likes.HasUserLikedReply(ctx, replyID, userID)
		if err != nil {
			return storageErr("check reply like", "reply like", err)
		}
		if liked {
			return fmt.Errorf("reply %d already liked: %w", replyID, ErrConflict)
		}

		like = &models.CommentReplyLike{ReplyID: replyID, UserID: userID}
		if err := likes.CreateReplyLike(ctx, like); err != nil {
			return storageErr("create reply like", "reply like", err)
		}
		notify(Event{RecipientID: reply.AuthorID, ActorID: userID, Verb: models.VerbReplyLike, Target: reply})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

func (s *ActivityService) UnlikeReply(ctx context.Context, replyID, userID uint) error {
	return s.run(ctx, "unlike reply", func(tx *gorm.DB, _ notifyFunc) error {
		return storageErr("delete reply like", fmt.Sprintf("like on reply %d", replyID),
			s.repos.ReplyLikes.WithTx(tx).DeleteReplyLike(ctx, replyID, userID))
	})
}

// PostDetail is a post with its like count and comments oldest first.
type PostDetail struct {
	Post       *models.Post     `json:"post"`
	LikesCount int64            `json:"likes_count"`
	LikedByMe  bool             `json:"liked_by_me"`
	Comments   []models.Comment `json:"comments"`
}

func (s *ActivityService) GetPost(ctx context.Context, postID, viewerID uint) (*PostDetail, error) {
	var detail PostDetail
	err := s.run(ctx, "get post", func(tx *gorm.DB, _ notifyFunc) error {
		post, err := s.repos.Posts.WithTx(tx).GetPostByID(ctx, postID)
		if err != nil {
			return storageErr("get post", fmt.Sprintf("post %d", postID), err)
		}
		likes := s.repos.PostLikes.WithTx(tx)
		count, err := likes.GetLikesCountByPostID(ctx, postID)
		if err != nil {
			return storageErr("count post likes", "post likes", err)
		}
		liked, err := likes.HasUserLikedPost(ctx, postID, viewerID)
		if err != nil {
			return storageErr("check post like", "post like", err)
		}
		comments, err := s.repos.Comments.WithTx(tx).GetCommentsByPostID(ctx, postID)
		if err != nil {
			return storageErr("list comments", "comments", err)
		}
		detail = PostDetail{Post: post, LikesCount: count, LikedByMe: liked, Comments: comments}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *ActivityService) Replies(ctx context.Context, commentID uint) ([]models.CommentReply, error) {
	var replies []models.CommentReply
	err := s.run(ctx, "list replies", func(tx *gorm.DB, _ notifyFunc) error {
		if _, err := s.repos.Comments.WithTx(tx).GetCommentByID(ctx, commentID); err != nil {
			return storageErr("get comment", fmt.Sprintf("comment %d", commentID), err)
		}
		var err error
		replies, err = s.repos.Replies.WithTx(tx).GetRepliesByCommentID(ctx, commentID)
		return storageErr("list replies", "replies", err)
	})
	return replies, err
}

// GetMessage returns a message to its sender or recipient.
func (s *ActivityService) GetMessage(ctx context.Context, messageID, requesterID uint) (*models.Message, error) {
	var message *models.Message
	err := s.run(ctx, "get message", func(tx *gorm.DB, _ notifyFunc) error {
		m, err := s.repos.Messages.WithTx(tx).GetMessageByID(ctx, messageID)
		if err != nil {
			return storageErr("get message", fmt.Sprintf("message %d", messageID), err)
		}
		if m.SenderID != requesterID && m.RecipientID != requesterID {
			return fmt.Errorf("message %d: %w", messageID, ErrForbidden)
		}
		message = m
		return nil
	})
	return message, err
}
