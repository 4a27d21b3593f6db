package services

import (
	"context"
	"testing"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func stubLookup(context.Context, *gorm.DB, uint) (models.Entity, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestNewReferenceResolverRequiresEveryKind(t *testing.T) {
	lookups := map[models.EntityKind]LookupFunc{}
	for _, kind := range models.EntityKinds {
		lookups[kind] = stubLookup
	}
	_, err := NewReferenceResolver(lookups)
	require.NoError(t, err)

	delete(lookups, models.KindCommentReplyLike)
	_, err = NewReferenceResolver(lookups)
	assert.ErrorContains(t, err, "comment_reply_like")

	lookups[models.KindCommentReplyLike] = stubLookup
	lookups["story"] = stubLookup
	_, err = NewReferenceResolver(lookups)
	assert.ErrorContains(t, err, "story")
}

func TestResolverRoundTripForEveryKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.post(t, alice, "hello world")
	comment := f.comment(t, post, bob, "nice post")
	reply := f.reply(t, comment, alice, "thanks")
	like := &models.CommentReplyLike{ReplyID: reply.ID, UserID: bob.ID}
	require.NoError(t, f.db.Create(like).Error)

	entities := []models.Entity{alice, post, comment, reply, like}
	kinds := map[models.EntityKind]bool{}
	for _, entity := range entities {
		ref, err := f.resolver.Describe(entity)
		require.NoError(t, err)

		resolved, err := f.resolver.Resolve(ctx, ref)
		require.NoError(t, err)

		back, err := f.resolver.Describe(resolved)
		require.NoError(t, err)
		assert.Equal(t, ref, back)
		assert.Equal(t, entity.Summary(), resolved.Summary())
		kinds[ref.Kind] = true
	}
	assert.Len(t, kinds, len(models.EntityKinds))
}

func TestResolveErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.resolver.Resolve(ctx, models.EntityRef{Kind: models.KindPost, ID: 404})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.resolver.Resolve(ctx, models.EntityRef{Kind: "story", ID: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.resolver.Describe(nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.resolver.Describe(&models.Post{})
	assert.ErrorIs(t, err, ErrValidation)

	for _, typedNil := range []models.Entity{
		(*models.User)(nil),
		(*models.Post)(nil),
		(*models.Comment)(nil),
		(*models.CommentReply)(nil),
		(*models.CommentReplyLike)(nil),
	} {
		assert.NotPanics(t, func() {
			_, err = f.resolver.Describe(typedNil)
		})
		assert.ErrorIs(t, err, ErrValidation, "%T", typedNil)
	}
}

func TestLabelFallsBackForDeletedTargets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	post := f.post(t, alice, "soon gone")

	assert.Equal(t, "@alice", f.resolver.Label(ctx, alice.Ref()))
	assert.Equal(t, `post "soon gone"`, f.resolver.Label(ctx, post.Ref()))

	require.NoError(t, f.repos.Posts.DeletePost(ctx, post.ID))
	assert.Equal(t, "deleted post", f.resolver.Label(ctx, post.Ref()))
}

func TestResolverWithTxSeesUncommittedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.db.Transaction(func(tx *gorm.DB) error {
		user := &models.User{Username: "carol", Email: "carol@example.com"}
		require.NoError(t, tx.Create(user).Error)

		entity, err := f.resolver.WithTx(tx).Resolve(ctx, user.Ref())
		require.NoError(t, err)
		assert.Equal(t, "@carol", entity.Summary())
		return nil
	})
	require.NoError(t, err)
}
