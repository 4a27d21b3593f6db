package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/repositories"
	"github.com/anonto42/reachout/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	repos         *repositories.Repositories
	resolver      *ReferenceResolver
	cache         *memoryCache
	notifications *NotificationService
	reporter      *recordingReporter
	activity      *ActivityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	repos := repositories.NewRepositories(db)
	resolver, err := NewRepositoryResolver(repos.Users, repos.Posts, repos.Comments, repos.Replies, repos.ReplyLikes)
	require.NoError(t, err)

	cache := newMemoryCache()
	notifications := NewNotificationService(db, repos.Notifications, resolver, cache, 5*time.Second)
	reporter := &recordingReporter{}
	return &fixture{
		db:            db,
		repos:         repos,
		resolver:      resolver,
		cache:         cache,
		notifications: notifications,
		reporter:      reporter,
		activity:      NewActivityService(db, repos, notifications, reporter, 5*time.Second),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	return testutil.CreateUser(t, f.db, name)
}

func (f *fixture) post(t *testing.T, author *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Content: content}
	require.NoError(t, f.db.Create(post).Error)
	return post
}

func (f *fixture) comment(t *testing.T, post *models.Post, author *models.User, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Content: content}
	require.NoError(t, f.db.Create(comment).Error)
	return comment
}

func (f *fixture) reply(t *testing.T, comment *models.Comment, author *models.User, content string) *models.CommentReply {
	t.Helper()
	reply := &models.CommentReply{CommentID: comment.ID, AuthorID: author.ID, Content: content}
	require.NoError(t, f.db.Create(reply).Error)
	return reply
}

func (f *fixture) notificationsOf(t *testing.T, recipientID uint) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, f.db.Where("recipient_id = ?", recipientID).Order("id").Find(&rows).Error)
	return rows
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

type cachedCount struct {
	gen   int64
	count int64
}

type memoryCache struct {
	mu     sync.Mutex
	gens   map[uint]int64
	counts map[uint]cachedCount
}

func newMemoryCache() *memoryCache {
	return &memoryCache{gens: map[uint]int64{}, counts: map[uint]cachedCount{}}
}

func (c *memoryCache) Get(_ context.Context, userID uint) (int64, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[userID]
	entry, ok := c.counts[userID]
	if !ok || entry.gen != gen {
		return 0, gen, false, nil
	}
	return entry.count, gen, true, nil
}

func (c *memoryCache) Set(_ context.Context, userID uint, gen, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gens[userID] {
		return nil
	}
	c.counts[userID] = cachedCount{gen: gen, count: count}
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	delete(c.counts, userID)
	return nil
}

func (c *memoryCache) cached(userID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.counts[userID]
	return ok && entry.gen == c.gens[userID]
}

type recordingReporter struct {
	events []Event
	causes []error
}

func (r *recordingReporter) ReportFailure(_ context.Context, ev Event, cause error) {
	r.events = append(r.events, ev)
	r.causes = append(r.causes, cause)
}
