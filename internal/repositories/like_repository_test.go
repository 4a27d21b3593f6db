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

func TestCreateLikeDuplicateIsTranslated(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	fan := testutil.CreateUser(t, db, "fan")
	post := &models.Post{AuthorID: author.ID, Content: "p"}
	require.NoError(t, db.Create(post).Error)

	repo := NewPostgresLikeRepository(db)
	require.NoError(t, repo.CreateLike(ctx, &models.PostLike{PostID: post.ID, UserID: fan.ID}))

	err := repo.CreateLike(ctx, &models.PostLike{PostID: post.ID, UserID: fan.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	count, err := repo.GetLikesCountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
