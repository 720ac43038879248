package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackInfo is an internal type, not sent to clients.
// It is used to pass the recomputed summary from the feedback aggregator
// (castReaction & friends) to the referenced track to store it there
type FeedbackInfo = struct {
	TrackOID  primitive.ObjectID
	Score     float64
	Loves     int32
	Likes     int32
	Mehs      int32
	Dislikes  int32
	Total     int32
	TouchedTS time.Time // a reaction updates the "touched" info, not the "modified"
}
