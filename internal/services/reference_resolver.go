package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/repositories"
	"github.com/anonto42/reachout/backend/pkg/zlog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LookupFunc loads one entity of a fixed kind by primary key. tx is nil when
// the lookup should run on the resolver's default handle.
type LookupFunc func(ctx context.Context, tx *gorm.DB, id uint) (models.Entity, error)

// ReferenceResolver turns (kind, id) pairs into live entities and back.
type ReferenceResolver struct {
	lookups map[models.EntityKind]LookupFunc
	tx      *gorm.DB
}

// NewReferenceResolver fails unless lookups covers exactly models.EntityKinds.
func NewReferenceResolver(lookups map[models.EntityKind]LookupFunc) (*ReferenceResolver, error) {
	for _, kind := range models.EntityKinds {
		if lookups[kind] == nil {
			return nil, fmt.Errorf("reference resolver: no lookup registered for kind %q", kind)
		}
	}
	for kind := range lookups {
		if !kind.Valid() {
			return nil, fmt.Errorf("reference resolver: unknown kind %q registered", kind)
		}
	}
	return &ReferenceResolver{lookups: lookups}, nil
}

// NewRepositoryResolver registers one lookup per entity table.
func NewRepositoryResolver(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	replies repositories.CommentReplyRepository,
	replyLikes repositories.CommentReplyLikeRepository,
) (*ReferenceResolver, error) {
	return NewReferenceResolver(map[models.EntityKind]LookupFunc{
		models.KindUser: func(ctx context.Context, tx *gorm.DB, id uint) (models.Entity, error) {
			r := users
			if tx != nil {
				r = r.WithTx(tx)
			}
			e, err := r.GetUserByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
		models.KindPost: func(ctx context.Context, tx *gorm.DB, id uint) (models.Entity, error) {
			r := posts
			if tx != nil {
				r = r.WithTx(tx)
			}
			e, err := r.GetPostByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
		models.KindComment: func(ctx context.Context, tx *gorm.DB, id uint) (models.Entity, error) {
			r := comments
			if tx != nil {
				r = r.WithTx(tx)
			}
			e, err := r.GetCommentByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
		models.KindCommentReply: func(ctx context.Context, tx *gorm.DB, id uint) (models.Entity, error) {
			r := replies
			if tx != nil {
				r = r.WithTx(tx)
			}
			e, err := r.GetReplyByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
		models.KindCommentReplyLike: func(ctx context.Context, tx *gorm.DB, id uint) (models.Entity, error) {
			r := replyLikes
			if tx != nil {
				r = r.WithTx(tx)
			}
			e, err := r.GetReplyLikeByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
	})
}

// WithTx returns a resolver whose lookups run on tx.
func (r *ReferenceResolver) WithTx(tx *gorm.DB) *ReferenceResolver {
	return &ReferenceResolver{lookups: r.lookups, tx: tx}
}

// Resolve loads the entity ref points at. A missing row yields ErrNotFound.
func (r *ReferenceResolver) Resolve(ctx context.Context, ref models.EntityRef) (models.Entity, error) {
	lookup, ok := r.lookups[ref.Kind]
	if !ok {
		return nil, validationErr("unsupported entity kind %q", ref.Kind)
	}
	entity, err := lookup(ctx, r.tx, ref.ID)
	if err != nil {
		return nil, storageErr("resolve "+ref.Kind.String(), ref.String(), err)
	}
	return entity, nil
}

// Describe is the inverse of Resolve.
func (r *ReferenceResolver) Describe(entity models.Entity) (models.EntityRef, error) {
	if isNilEntity(entity) {
		return models.EntityRef{}, validationErr("nil entity")
	}
	ref := entity.Ref()
	if _, ok := r.lookups[ref.Kind]; !ok {
		return models.EntityRef{}, validationErr("unsupported entity kind %q", ref.Kind)
	}
	if ref.ID == 0 {
		return models.EntityRef{}, validationErr("%s has no primary key", ref.Kind)
	}
	return ref, nil
}

// isNilEntity also catches typed nil pointers wrapped in the interface.
func isNilEntity(entity models.Entity) bool {
	switch e := entity.(type) {
	case nil:
		return true
	case *models.User:
		return e == nil
	case *models.Post:
		return e == nil
	case *models.Comment:
		return e == nil
	case *models.CommentReply:
		return e == nil
	case *models.CommentReplyLike:
		return e == nil
	}
	return false
}

// Label renders ref for display and never fails: a target that is gone or
// cannot be loaded shows as "deleted <kind>".
func (r *ReferenceResolver) Label(ctx context.Context, ref models.EntityRef) string {
	entity, err := r.Resolve(ctx, ref)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			zlog.Warn("failed to resolve notification reference",
				zap.String("ref", ref.String()), zap.Error(err))
		}
		return "deleted " + ref.Kind.String()
	}
	return entity.Summary()
}
