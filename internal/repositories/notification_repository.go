package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	CreateNotification(ctx context.Context, notification *models.Notification) error
	// ListForRecipientForUpdate returns the recipient's notifications newest
	// first and locks the rows until the surrounding transaction ends.
	ListForRecipientForUpdate(ctx context.Context, recipientID uint) ([]models.Notification, error)
	// MarkRead flips only the listed rows, and only if they still belong to
	// recipientID and are unread.
	MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Notification, error)
	DeleteNotification(ctx context.Context, id uint) error
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: tx}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) ListForRecipientForUpdate(ctx context.Context, recipientID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := forUpdate(r.db.WithContext(ctx)).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Order("id DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND id IN ?", recipientID, false, ids).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := forUpdate(r.db.WithContext(ctx)).First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) DeleteNotification(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
