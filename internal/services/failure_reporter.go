package services

import (
	"context"

	"github.com/anonto42/reachout/backend/internal/models"
	"github.com/anonto42/reachout/backend/internal/repositories"
	"github.com/anonto42/reachout/backend/pkg/zlog"
	"go.uber.org/zap"
)

// FailureReporter is told about notifications that were dropped after their
// triggering action committed.
type FailureReporter interface {
	ReportFailure(ctx context.Context, ev Event, cause error)
}

type deliveryFailureReporter struct {
	repo repositories.DeliveryFailureRepository
}

// NewDeliveryFailureReporter stores dropped notifications in repo.
func NewDeliveryFailureReporter(repo repositories.DeliveryFailureRepository) FailureReporter {
	return &deliveryFailureReporter{repo: repo}
}

func (r *deliveryFailureReporter) ReportFailure(ctx context.Context, ev Event, cause error) {
	failure := &models.DeliveryFailure{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		Verb:        ev.Verb,
		Error:       cause.Error(),
	}
	if ev.Target != nil {
		ref := ev.Target.Ref()
		failure.TargetKind = ref.Kind
		failure.TargetID = ref.ID
	}
	// The request context may already be past its deadline.
	if err := r.repo.SaveFailure(context.WithoutCancel(ctx), failure); err != nil {
		zlog.Error("failed to record notification delivery failure",
			zap.Uint("recipient_id", ev.RecipientID),
			zap.String("verb", string(ev.Verb)),
			zap.Error(err))
	}
}
