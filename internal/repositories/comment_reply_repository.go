package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

type CommentReplyRepository interface {
	WithTx(tx *gorm.DB) CommentReplyRepository
	CreateReply(ctx context.Context, reply *models.CommentReply) error
	GetReplyByID(ctx context.Context, id uint) (*models.CommentReply, error)
	GetRepliesByCommentID(ctx context.Context, commentID uint) ([]models.CommentReply, error)
	DeleteReply(ctx context.Context, id uint) error
}

type postgresCommentReplyRepository struct {
	db *gorm.DB
}

func NewPostgresCommentReplyRepository(db *gorm.DB) CommentReplyRepository {
	return &postgresCommentReplyRepository{db: db}
}

func (r *postgresCommentReplyRepository) WithTx(tx *gorm.DB) CommentReplyRepository {
	return &postgresCommentReplyRepository{db: tx}
}

func (r *postgresCommentReplyRepository) CreateReply(ctx context.Context, reply *models.CommentReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *postgresCommentReplyRepository) GetReplyByID(ctx context.Context, id uint) (*models.CommentReply, error) {
	var reply models.CommentReply
	if err := r.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetRepliesByCommentID returns the thread newest first.
func (r *postgresCommentReplyRepository) GetRepliesByCommentID(ctx context.Context, commentID uint) ([]models.CommentReply, error) {
	var replies []models.CommentReply
	err := r.db.WithContext(ctx).Where("comment_id = ?", commentID).Order("created_at DESC").Find(&replies).Error
	return replies, err
}

func (r *postgresCommentReplyRepository) DeleteReply(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", id).Delete(&models.CommentReplyLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CommentReply{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
