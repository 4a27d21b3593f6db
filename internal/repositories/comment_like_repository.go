package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

// CommentLikeRepository defines the interface for comment like operations
type CommentLikeRepository interface {
	WithTx(tx *gorm.DB) CommentLikeRepository
	CreateCommentLike(ctx context.Context, like *models.CommentLike) error
	DeleteCommentLike(ctx context.Context, commentID, userID uint) error
	HasUserLikedComment(ctx context.Context, commentID, userID uint) (bool, error)
}

type postgresCommentLikeRepository struct {
	db *gorm.DB
}

func NewPostgresCommentLikeRepository(db *gorm.DB) CommentLikeRepository {
	return &postgresCommentLikeRepository{db: db}
}

func (r *postgresCommentLikeRepository) WithTx(tx *gorm.DB) CommentLikeRepository {
	return &postgresCommentLikeRepository{db: tx}
}

func (r *postgresCommentLikeRepository) CreateCommentLike(ctx context.Context, like *models.CommentLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *postgresCommentLikeRepository) DeleteCommentLike(ctx context.Context, commentID, userID uint) error {
	res := r.db.WithContext(ctx).Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresCommentLikeRepository) HasUserLikedComment(ctx context.Context, commentID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where("comment_id = ? AND user_id = ?", commentID, userID).Count(&count).Error
	return count > 0, err
}
