package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

type UserProfileRepository interface {
	WithTx(tx *gorm.DB) UserProfileRepository
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	GetProfileByUserID(ctx context.Context, userID uint) (*models.UserProfile, error)
}

type postgresUserProfileRepository struct {
	db *gorm.DB
}

func NewPostgresUserProfileRepository(db *gorm.DB) UserProfileRepository {
	return &postgresUserProfileRepository{db: db}
}

func (r *postgresUserProfileRepository) WithTx(tx *gorm.DB) UserProfileRepository {
	return &postgresUserProfileRepository{db: tx}
}

func (r *postgresUserProfileRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *postgresUserProfileRepository) GetProfileByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
