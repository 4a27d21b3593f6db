package repositories

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &PostgresCommentRepository{db: tx}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes a comment with its likes, replies and reply likes.
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Table("comments").Select("id").Where("id = ?", id)
		if err := deleteCommentChildren(tx, commentIDs); err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
