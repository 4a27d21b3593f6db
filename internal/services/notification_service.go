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

// Event describes one notification to record. The actor is always a user.
type Event struct {
	RecipientID uint
	ActorID     uint
	Verb        models.Verb
	Target      models.Entity
}

// NotificationView is a notification as shown to its recipient.
type NotificationView struct {
	ID                uint              `json:"id"`
	Recipient         uint              `json:"recipient"`
	ActorKind         models.EntityKind `json:"actor_kind"`
	ActorID           uint              `json:"actor_id"`
	ActorDescription  string            `json:"actor_description"`
	TargetKind        models.EntityKind `json:"target_kind"`
	TargetID          uint              `json:"target_id"`
	TargetDescription string            `json:"target_description"`
	Verb              models.Verb       `json:"verb"`
	Read              bool              `json:"read"`
	Timestamp         time.Time         `json:"timestamp"`
}

// NotificationService creates, lists and deletes notifications.
type NotificationService struct {
	db       *gorm.DB
	repo     repositories.NotificationRepository
	resolver *ReferenceResolver
	cache    repositories.UnreadCounterCache
	timeout  time.Duration
	inTx     bool
}

func NewNotificationService(
	db *gorm.DB,
	repo repositories.NotificationRepository,
	resolver *ReferenceResolver,
	cache repositories.UnreadCounterCache,
	timeout time.Duration,
) *NotificationService {
	if cache == nil {
		cache = repositories.NewNoopUnreadCounterCache()
	}
	return &NotificationService{
		db:       db,
		repo:     repo,
		resolver: resolver,
		cache:    cache,
		timeout:  timeout,
	}
}

// WithTx binds the service to the caller's transaction. The caller is then
// responsible for calling InvalidateUnread once it commits.
func (s *NotificationService) WithTx(tx *gorm.DB) *NotificationService {
	return &NotificationService{
		db:       tx,
		repo:     s.repo.WithTx(tx),
		resolver: s.resolver.WithTx(tx),
		cache:    s.cache,
		timeout:  s.timeout,
		inTx:     true,
	}
}

// CreateInTx records ev on tx.
func (s *NotificationService) CreateInTx(ctx context.Context, tx *gorm.DB, ev Event) (*models.Notification, error) {
	return s.WithTx(tx).Create(ctx, ev)
}

func (s *NotificationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Create inserts one unread notification. It does not compare actor and
// recipient; callers decide whether self-notifications are wanted.
func (s *NotificationService) Create(ctx context.Context, ev Event) (*models.Notification, error) {
	if ev.RecipientID == 0 {
		return nil, validationErr("notification recipient is required")
	}
	if ev.ActorID == 0 {
		return nil, validationErr("notification actor is required")
	}
	if !ev.Verb.Valid() {
		return nil, validationErr("unknown verb %q", ev.Verb)
	}
	target, err := s.resolver.Describe(ev.Target)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	notification := &models.Notification{
		RecipientID: ev.RecipientID,
		ActorKind:   models.KindUser,
		ActorID:     ev.ActorID,
		TargetKind:  target.Kind,
		TargetID:    target.ID,
		Verb:        ev.Verb,
	}
	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		return nil, &StorageError{Op: "create notification", Err: err}
	}
	if !s.inTx {
		s.InvalidateUnread(ctx, ev.RecipientID)
	}
	return notification, nil
}

// ListFor returns every notification of recipientID newest first and marks
// the unread ones read in the same transaction. The returned views all have
// Read set.
func (s *NotificationService) ListFor(ctx context.Context, recipientID uint) ([]NotificationView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rows []models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		rows, err = repo.ListForRecipientForUpdate(ctx, recipientID)
		if err != nil {
			return err
		}
		unread := make([]uint, 0, len(rows))
		for _, n := range rows {
			if !n.Read {
				unread = append(unread, n.ID)
			}
		}
		_, err = repo.MarkRead(ctx, recipientID, unread)
		return err
	})
	if err != nil {
		return nil, &StorageError{Op: "list notifications", Err: err}
	}
	if !s.inTx {
		s.InvalidateUnread(ctx, recipientID)
	}

	views := make([]NotificationView, 0, len(rows))
	for i := range rows {
		n := &rows[i]
		views = append(views, NotificationView{
			ID:                n.ID,
			Recipient:         n.RecipientID,
			ActorKind:         n.ActorKind,
			ActorID:           n.ActorID,
			ActorDescription:  s.resolver.Label(ctx, n.ActorRef()),
			TargetKind:        n.TargetKind,
			TargetID:          n.TargetID,
			TargetDescription: s.resolver.Label(ctx, n.TargetRef()),
			Verb:              n.Verb,
			Read:              true,
			Timestamp:         n.CreatedAt,
		})
	}
	return views, nil
}

// Delete removes notification id if requesterID is its recipient.
func (s *NotificationService) Delete(ctx context.Context, id, requesterID uint) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var recipientID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		n, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return storageErr("get notification", fmt.Sprintf("notification %d", id), err)
		}
		if n.RecipientID != requesterID {
			return fmt.Errorf("notification %d: %w", id, ErrForbidden)
		}
		recipientID = n.RecipientID
		return storageErr("delete notification", fmt.Sprintf("notification %d", id), repo.DeleteNotification(ctx, id))
	})
	if err != nil {
		return storageErr("delete notification", fmt.Sprintf("notification %d", id), err)
	}
	if !s.inTx {
		s.InvalidateUnread(ctx, recipientID)
	}
	return nil
}

// UnreadCount returns how many unread notifications recipientID has.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cached, gen, ok, cacheErr := s.cache.Get(ctx, recipientID)
	if cacheErr != nil {
		zlog.Warn("unread count cache read failed", zap.Uint("user_id", recipientID), zap.Error(cacheErr))
	} else if ok {
		return cached, nil
	}

	count, err := s.repo.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, &StorageError{Op: "count unread notifications", Err: err}
	}
	// Without a generation the write could not be fenced against
	// invalidations.
	if cacheErr == nil {
		if err := s.cache.Set(ctx, recipientID, gen, count); err != nil {
			zlog.Warn("unread count cache write failed", zap.Uint("user_id", recipientID), zap.Error(err))
		}
	}
	return count, nil
}

// InvalidateUnread drops the cached unread count of recipientID.
func (s *NotificationService) InvalidateUnread(ctx context.Context, recipientID uint) {
	if err := s.cache.Invalidate(ctx, recipientID); err != nil {
		zlog.Warn("unread count cache invalidation failed", zap.Uint("user_id", recipientID), zap.Error(err))
	}
}
