package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

type CommentReplyLikeRepository interface {
	WithTx(tx *gorm.DB) CommentReplyLikeRepository
	CreateReplyLike(ctx context.Context, like *models.CommentReplyLike) error
	GetReplyLikeByID(ctx context.Context, id uint) (*models.CommentReplyLike, error)
	DeleteReplyLike(ctx context.Context, replyID, userID uint) error
	HasUserLikedReply(ctx context.Context, replyID, userID uint) (bool, error)
}

type postgresCommentReplyLikeRepository struct {
	db *gorm.DB
}

func NewPostgresCommentReplyLikeRepository(db *gorm.DB) CommentReplyLikeRepository {
	return &postgresCommentReplyLikeRepository{db: db}
}

func (r *postgresCommentReplyLikeRepository) WithTx(tx *gorm.DB) CommentReplyLikeRepository {
	return &postgresCommentReplyLikeRepository{db: tx}
}

func (r *postgresCommentReplyLikeRepository) CreateReplyLike(ctx context.Context, like *models.CommentReplyLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *postgresCommentReplyLikeRepository) GetReplyLikeByID(ctx context.Context, id uint) (*models.CommentReplyLike, error) {
	var like models.CommentReplyLike
	if err := r.db.WithContext(ctx).First(&like, id).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *postgresCommentReplyLikeRepository) DeleteReplyLike(ctx context.Context, replyID, userID uint) error {
	res := r.db.WithContext(ctx).Where("reply_id = ? AND user_id = ?", replyID, userID).Delete(&models.CommentReplyLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresCommentReplyLikeRepository) HasUserLikedReply(ctx context.Context, replyID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentReplyLike{}).Where("reply_id = ? AND user_id = ?", replyID, userID).Count(&count).Error
	return count > 0, err
}
