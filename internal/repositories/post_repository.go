package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	DeletePost(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) WithTx(tx *gorm.DB) PostRepository {
	return &PostgresPostRepository{db: tx}
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetPostByID retrieves a post by ID from PostgreSQL
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post together with its likes, comments and everything
// hanging off those comments.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Table("comments").Select("id").Where("post_id = ?", id)
		if err := deleteCommentChildren(tx, commentIDs); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// deleteCommentChildren removes reply likes, replies and comment likes for the
// comments selected by commentIDs.
func deleteCommentChildren(tx *gorm.DB, commentIDs *gorm.DB) error {
	replyIDs := tx.Table("comment_replies").Select("id").Where("comment_id IN (?)", commentIDs)
	if err := tx.Where("reply_id IN (?)", replyIDs).Delete(&models.CommentReplyLike{}).Error; err != nil {
		return err
	}
	if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentReply{}).Error; err != nil {
		return err
	}
	return tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error
}
