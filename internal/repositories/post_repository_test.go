package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeletePostCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	keep := &models.Post{AuthorID: alice.ID, Content: "stays"}
	doomed := &models.Post{AuthorID: alice.ID, Content: "goes"}
	require.NoError(t, repos.Posts.CreatePost(ctx, keep))
	require.NoError(t, repos.Posts.CreatePost(ctx, doomed))

	for _, post := range []*models.Post{keep, doomed} {
		require.NoError(t, repos.PostLikes.CreateLike(ctx, &models.PostLike{PostID: post.ID, UserID: bob.ID}))
		comment := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "c"}
		require.NoError(t, repos.Comments.CreateComment(ctx, comment))
		require.NoError(t, repos.CommentLikes.CreateCommentLike(ctx, &models.CommentLike{CommentID: comment.ID, UserID: alice.ID}))
		reply := &models.CommentReply{CommentID: comment.ID, AuthorID: alice.ID, Content: "r"}
		require.NoError(t, repos.Replies.CreateReply(ctx, reply))
		require.NoError(t, repos.ReplyLikes.CreateReplyLike(ctx, &models.CommentReplyLike{ReplyID: reply.ID, UserID: bob.ID}))
	}

	require.NoError(t, repos.Posts.DeletePost(ctx, doomed.ID))
	assert.ErrorIs(t, repos.Posts.DeletePost(ctx, doomed.ID), gorm.ErrRecordNotFound)

	for model, want := range map[interface{}]int64{
		&models.Post{}:             1,
		&models.PostLike{}:         1,
		&models.Comment{}:          1,
		&models.CommentLike{}:      1,
		&models.CommentReply{}:     1,
		&models.CommentReplyLike{}: 1,
	} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Equal(t, want, n, "%T", model)
	}

	_, err := repos.Posts.GetPostByID(ctx, keep.ID)
	assert.NoError(t, err)
}
