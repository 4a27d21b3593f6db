package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for post like operations
type LikeRepository interface {
	WithTx(tx *gorm.DB) LikeRepository
	CreateLike(ctx context.Context, like *models.PostLike) error
	DeleteLike(ctx context.Context, postID, userID uint) error
	HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error)
	GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &PostgresLikeRepository{db: tx}
}

func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.PostLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike returns gorm.ErrRecordNotFound when there was nothing to delete.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID uint) error {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PostLike{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
