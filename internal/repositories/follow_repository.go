package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	WithTx(tx *gorm.DB) FollowRepository
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) WithTx(tx *gorm.DB) FollowRepository {
	return &PostgresFollowRepository{db: tx}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN (?)",
		r.db.Table("follows").Select("follower_id").Where("following_id = ?", userID),
	).Find(&users).Error
	return users, err
}
