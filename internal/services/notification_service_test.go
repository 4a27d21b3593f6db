package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStartsUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")

	n, err := f.notifications.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbFollow, Target: u2})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.False(t, n.Read)
	assert.Equal(t, models.KindUser, n.ActorKind)
	assert.Equal(t, u2.Ref(), n.TargetRef())

	var stored models.Notification
	require.NoError(t, f.db.First(&stored, n.ID).Error)
	assert.False(t, stored.Read)
}

func TestCreateRejectsInvalidEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")

	cases := map[string]Event{
		"no recipient": {ActorID: u2.ID, Verb: models.VerbFollow, Target: u2},
		"no actor":     {RecipientID: u1.ID, Verb: models.VerbFollow, Target: u2},
		"unknown verb": {RecipientID: u1.ID, ActorID: u2.ID, Verb: "poke", Target: u2},
		"no target":    {RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbFollow},
		"unsaved post": {RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbPostLike, Target: &models.Post{}},
		"nil post":     {RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbPostLike, Target: (*models.Post)(nil)},
		"nil user":     {RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbFollow, Target: (*models.User)(nil)},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() { _, err = f.notifications.Create(ctx, ev) })
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, f.count(t, &models.Notification{}))
}

func TestCreateAllowsSelfNotification(t *testing.T) {
	f := newFixture(t)
	u1 := f.user(t, "u1")

	_, err := f.notifications.Create(context.Background(), Event{RecipientID: u1.ID, ActorID: u1.ID, Verb: models.VerbMessage, Target: u1})
	require.NoError(t, err)
}

// Scenario A
func TestListForMarksEverythingRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")

	_, err := f.notifications.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbFollow, Target: u2})
	require.NoError(t, err)

	views, err := f.notifications.ListFor(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.VerbFollow, views[0].Verb)
	assert.True(t, views[0].Read)
	assert.Equal(t, u1.ID, views[0].Recipient)
	assert.Equal(t, "@u2", views[0].ActorDescription)
	assert.Equal(t, "@u2", views[0].TargetDescription)

	for _, n := range f.notificationsOf(t, u1.ID) {
		assert.True(t, n.Read)
	}
}

func TestListForIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")
	post := f.post(t, u1, "first")

	_, err := f.notifications.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbFollow, Target: u2})
	require.NoError(t, err)
	_, err = f.notifications.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbPostLike, Target: post})
	require.NoError(t, err)

	first, err := f.notifications.ListFor(ctx, u1.ID)
	require.NoError(t, err)
	second, err := f.notifications.ListFor(ctx, u1.ID)
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.True(t, first[i].Read)
		assert.True(t, second[i].Read)
	}
}

func TestListForOrdersNewestFirstAndScopesToRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2, u3 := f.user(t, "u1"), f.user(t, "u2"), f.user(t, "u3")

	base := time.Now().Add(-time.Hour)
	rows := []models.Notification{
		{RecipientID: u1.ID, ActorKind: models.KindUser, ActorID: u2.ID, TargetKind: models.KindUser, TargetID: u2.ID, Verb: models.VerbFollow, CreatedAt: base},
		{RecipientID: u1.ID, ActorKind: models.KindUser, ActorID: u3.ID, TargetKind: models.KindUser, TargetID: u3.ID, Verb: models.VerbMessage, CreatedAt: base.Add(2 * time.Minute)},
		{RecipientID: u1.ID, ActorKind: models.KindUser, ActorID: u3.ID, TargetKind: models.KindUser, TargetID: u3.ID, Verb: models.VerbFollow, CreatedAt: base.Add(time.Minute)},
		{RecipientID: u2.ID, ActorKind: models.KindUser, ActorID: u3.ID, TargetKind: models.KindUser, TargetID: u3.ID, Verb: models.VerbFollow, CreatedAt: base},
	}
	require.NoError(t, f.db.Create(&rows).Error)

	views, err := f.notifications.ListFor(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, rows[1].ID, views[0].ID)
	assert.Equal(t, rows[2].ID, views[1].ID)
	assert.Equal(t, rows[0].ID, views[2].ID)

	// u2's notification is untouched by u1's listing.
	other := f.notificationsOf(t, u2.ID)
	require.Len(t, other, 1)
	assert.False(t, other[0].Read)
}

// Scenario B
func TestDeleteChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")

	n, err := f.notifications.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbFollow, Target: u2})
	require.NoError(t, err)

	err = f.notifications.Delete(ctx, n.ID, u2.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, f.notificationsOf(t, u1.ID), 1)

	require.NoError(t, f.notifications.Delete(ctx, n.ID, u1.ID))
	views, err := f.notifications.ListFor(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, views)

	err = f.notifications.Delete(ctx, n.ID, u1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Scenario C
func TestListForDegradesDeletedTargets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")
	post := f.post(t, u1, "post")
	comment := f.comment(t, post, u1, "my comment")

	_, err := f.notifications.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbCommentLike, Target: comment})
	require.NoError(t, err)
	require.NoError(t, f.repos.Comments.DeleteComment(ctx, comment.ID))

	views, err := f.notifications.ListFor(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.KindComment, views[0].TargetKind)
	assert.Equal(t, comment.ID, views[0].TargetID)
	assert.Equal(t, "deleted comment", views[0].TargetDescription)
	assert.Equal(t, "@u2", views[0].ActorDescription)
}

// Scenario D
func TestConcurrentCreatesForOneRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")
	post := f.post(t, u1, "post")

	events := []Event{
		{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbFollow, Target: u2},
		{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbPostLike, Target: post},
	}
	var wg sync.WaitGroup
	errs := make([]error, len(events))
	for i, ev := range events {
		wg.Add(1)
		go func(i int, ev Event) {
			defer wg.Done()
			_, errs[i] = f.notifications.Create(ctx, ev)
		}(i, ev)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	views, err := f.notifications.ListFor(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	verbs := []models.Verb{views[0].Verb, views[1].Verb}
	assert.ElementsMatch(t, []models.Verb{models.VerbFollow, models.VerbPostLike}, verbs)
	assert.False(t, views[0].Timestamp.Before(views[1].Timestamp))
	if views[0].Timestamp.Equal(views[1].Timestamp) {
		assert.Greater(t, views[0].ID, views[1].ID)
	}
}

func TestUnreadCountUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")

	for i := 0; i < 2; i++ {
		_, err := f.notifications.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbMessage, Target: u2})
		require.NoError(t, err)
	}

	count, err := f.notifications.UnreadCount(ctx, u1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.True(t, f.cache.cached(u1.ID))

	_, err = f.notifications.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbFollow, Target: u2})
	require.NoError(t, err)
	assert.False(t, f.cache.cached(u1.ID))

	count, err = f.notifications.UnreadCount(ctx, u1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	_, err = f.notifications.ListFor(ctx, u1.ID)
	require.NoError(t, err)
	count, err = f.notifications.UnreadCount(ctx, u1.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// interleavingCache runs beforeSet once, between the database read and the
// cache write of UnreadCount.
type interleavingCache struct {
	*memoryCache
	beforeSet func()
}

func (c *interleavingCache) Set(ctx context.Context, userID uint, gen, count int64) error {
	if c.beforeSet != nil {
		run := c.beforeSet
		c.beforeSet = nil
		run()
	}
	return c.memoryCache.Set(ctx, userID, gen, count)
}

func TestUnreadCountIgnoresCountReadBeforeInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, "u1"), f.user(t, "u2")

	cache := &interleavingCache{memoryCache: newMemoryCache()}
	svc := NewNotificationService(f.db, f.repos.Notifications, f.resolver, cache, 5*time.Second)
	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, Event{RecipientID: u1.ID, ActorID: u2.ID, Verb: models.VerbMessage, Target: u2})
		require.NoError(t, err)
	}

	cache.beforeSet = func() {
		_, err := svc.ListFor(ctx, u1.ID)
		require.NoError(t, err)
	}
	count, err := svc.UnreadCount(ctx, u1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.False(t, cache.cached(u1.ID))

	count, err = svc.UnreadCount(ctx, u1.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.True(t, cache.cached(u1.ID))
}

func TestMemoryCacheDropsWritesFromOldGeneration(t *testing.T) {
	cache := newMemoryCache()
	ctx := context.Background()

	_, gen, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Invalidate(ctx, 1))
	require.NoError(t, cache.Set(ctx, 1, gen, 9))

	_, _, ok, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
