package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFailureRepository struct {
	saved []*models.DeliveryFailure
	err   error
	ctxOK bool
}

func (r *fakeFailureRepository) SaveFailure(ctx context.Context, failure *models.DeliveryFailure) error {
	r.ctxOK = ctx.Err() == nil
	r.saved = append(r.saved, failure)
	return r.err
}

func TestDeliveryFailureReporterSavesEvent(t *testing.T) {
	repo := &fakeFailureRepository{}
	reporter := NewDeliveryFailureReporter(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	post := &models.Post{ID: 7, AuthorID: 1, Content: "hello"}
	reporter.ReportFailure(ctx, Event{RecipientID: 1, ActorID: 2, Verb: models.VerbPostLike, Target: post}, errors.New("disk full"))

	require.Len(t, repo.saved, 1)
	got := repo.saved[0]
	assert.Equal(t, uint(1), got.RecipientID)
	assert.Equal(t, uint(2), got.ActorID)
	assert.Equal(t, models.VerbPostLike, got.Verb)
	assert.Equal(t, models.KindPost, got.TargetKind)
	assert.Equal(t, uint(7), got.TargetID)
	assert.Equal(t, "disk full", got.Error)
	assert.True(t, repo.ctxOK, "save must not inherit the cancelled request context")
}

func TestDeliveryFailureReporterSwallowsSaveErrors(t *testing.T) {
	repo := &fakeFailureRepository{err: errors.New("mongo down")}
	reporter := NewDeliveryFailureReporter(repo)

	assert.NotPanics(t, func() {
		reporter.ReportFailure(context.Background(), Event{RecipientID: 1, ActorID: 2, Verb: models.VerbFollow}, errors.New("boom"))
	})
	require.Len(t, repo.saved, 1)
	assert.Empty(t, repo.saved[0].TargetKind)
}
