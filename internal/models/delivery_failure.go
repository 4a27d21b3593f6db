package models

import "time"

// DeliveryFailure records a notification that could not be persisted after
// its triggering action had already succeeded.
type DeliveryFailure struct {
	RecipientID uint       `json:"recipient_id" bson:"recipient_id"`
	ActorID     uint       `json:"actor_id" bson:"actor_id"`
	Verb        Verb       `json:"verb" bson:"verb"`
	TargetKind  EntityKind `json:"target_kind" bson:"target_kind"`
	TargetID    uint       `json:"target_id" bson:"target_id"`
	Error       string     `json:"error" bson:"error"`
	OccurredAt  time.Time  `json:"occurred_at" bson:"occurred_at"`
}
