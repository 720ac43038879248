package models

import (
	"context"
	"fmt"
	"sound-garage/apperror"
	"sound-garage/helpers"
	"sync"
	"time"

	"github.com/twinj/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reaction kinds (wire format) and their ordinal weights
// ordinals express sentiment strength and feed the score calculation
const (
	KindLove    = "love"
	KindLike    = "like"
	KindMeh     = "meh"
	KindDislike = "dislike"
)

const (
	OrdinalDislike int32 = 1
	OrdinalMeh     int32 = 2
	OrdinalLike    int32 = 3
	OrdinalLove    int32 = 4
)

// members may cast at most reactionRateLimit reactions within a rolling window
const (
	reactionRateLimit  = 30
	reactionRateWindow = time.Minute
)

// validator (tags) used by Gin => https://github.com/go-playground/validator

// Reaction represents a single reaction action
type Reaction struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TrackID primitive.ObjectID `json:"trackID" bson:"trackID" binding:"required"`
	// identity is either a member (userID, read from token) or a guest session
	UserID     primitive.ObjectID `json:"userID" bson:"userID,omitempty"`
	UserName   string             `json:"userName" bson:"userName,omitempty"`
	SessionID  string             `json:"sessionID" bson:"sessionID,omitempty"`
	Anonymous  bool               `json:"anonymous" bson:"anonymous"` // members may react without revealing their name
	Kind       string             `json:"kind" bson:"kind" binding:"required"`
	Comment    string             `json:"comment" bson:"comment,omitempty"`
	DeviceType string             `json:"deviceType" bson:"deviceType,omitempty"` // coarse client info, analytics only
	ReactionTS time.Time          `json:"reactionTS" bson:"reactionTS"`           // stored separately because users can change their reaction
}

// FeedbackStats represents the current state of reactions related to a track
type FeedbackStats struct {
	TrackID   primitive.ObjectID `json:"trackID" bson:"trackID"`
	Loves     int32              `json:"loves" bson:"loves"`
	Likes     int32              `json:"likes" bson:"likes"`
	Mehs      int32              `json:"mehs" bson:"mehs"`
	Dislikes  int32              `json:"dislikes" bson:"dislikes"`
	Total     int32              `json:"total" bson:"total"`
	Score     float64            `json:"score" bson:"score"` // average ordinal over all reactions
	UpdatedTS time.Time          `json:"updatedTS" bson:"updatedTS"`
}

// UserReaction represents a user's reaction to a track
// usually used as a slice type for lists
type UserReaction struct {
	TrackID primitive.ObjectID `json:"trackId" bson:"trackID"`
	Kind    string             `json:"kind" bson:"kind"` // primitive values need bson tag
}

// ReactionModel provides the logics to the data type
type ReactionModel struct {
	Collection      *mongo.Collection // reactions
	StatsCollection *mongo.Collection // feedbackStats (denormalized summaries)
	// some information comes from the user model and is referenced here
	// so the controller does not have to do that
	GetUserName func(ID string) (string, error)
	// reacting to a track that does not exist must fail
	TrackExists func(trackOID primitive.ObjectID) bool
	// the recomputed summary is passed to the track to store it there
	SetFeedback func(feedback *FeedbackInfo) error
}

// summaries of a track are recomputed under a per-track lock, so concurrent
// reactions to the same track serialize instead of racing on the upsert
var trackLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{locks: make(map[string]*sync.Mutex)}

func lockTrack(trackID string) *sync.Mutex {
	trackLocks.Lock()
	l, ok := trackLocks.locks[trackID]
	if !ok {
		l = &sync.Mutex{}
		trackLocks.locks[trackID] = l
	}
	trackLocks.Unlock()
	return l
}

// KindOrdinal maps a reaction kind to its sentiment weight (0 = unknown kind)
func KindOrdinal(kind string) int32 {
	switch kind {
	case KindLove:
		return OrdinalLove
	case KindLike:
		return OrdinalLike
	case KindMeh:
		return OrdinalMeh
	case KindDislike:
		return OrdinalDislike
	default:
		return 0
	}
}

// AnonSessionID synthesizes a session key for guests that did not deliver one
func AnonSessionID() string {
	return fmt.Sprintf("anon_%d_%s", time.Now().UnixNano()/int64(time.Millisecond), uuid.NewV4().String()[0:8])
}

// tallyStats aggregates a track's reactions into its summary
// kept free of DB access so it can be verified in isolation
func tallyStats(trackOID primitive.ObjectID, reactions []Reaction) *FeedbackStats {

	stats := &FeedbackStats{TrackID: trackOID}

	var weightedSum int64
	for _, r := range reactions {
		switch r.Kind {
		case KindLove:
			stats.Loves++
		case KindLike:
			stats.Likes++
		case KindMeh:
			stats.Mehs++
		case KindDislike:
			stats.Dislikes++
		default:
			// unknown kinds are not counted
			continue
		}
		stats.Total++
		weightedSum += int64(KindOrdinal(r.Kind))
	}

	if stats.Total > 0 {
		stats.Score = float64(weightedSum) / float64(stats.Total)
	}

	stats.UpdatedTS = time.Now()
	return stats
}

// ApplyIdentity stamps a reaction with the caller's verified identity.
// The userID comes from the token ("" for guests); whatever userID the
// client put on the wire is discarded. Guests and anonymous members get
// a session key if they don't present one
func ApplyIdentity(reaction *Reaction, userID string) {
	reaction.UserID = ObjectID(userID)
	if (userID == "" || reaction.Anonymous) && reaction.SessionID == "" {
		reaction.SessionID = AnonSessionID()
	}
}

// identityFilter builds the dedup condition - one reaction per identity & track.
// members are identified by their userID unless they chose to react anonymously,
// guests and anonymous members by their session
func identityFilter(reaction *Reaction) bson.D {
	if reaction.UserID != primitive.NilObjectID && !reaction.Anonymous {
		return bson.D{
			{Key: "trackID", Value: reaction.TrackID},
			{Key: "userID", Value: reaction.UserID},
		}
	}
	return bson.D{
		{Key: "trackID", Value: reaction.TrackID},
		{Key: "sessionID", Value: reaction.SessionID},
	}
}

// CastReaction is used to react to a track (love/like/meh/dislike)
// It also recomputes the track's summary and stores it denormalized
func (m ReactionModel) CastReaction(reaction Reaction) (*FeedbackStats, string, error) {

	if KindOrdinal(reaction.Kind) == 0 {
		return nil, "", ErrReactionKindInvalid
	}

	if !m.TrackExists(reaction.TrackID) {
		return nil, "", ErrTrackNotFound
	}

	authenticated := reaction.UserID != primitive.NilObjectID

	// guests (and anonymous members) are tracked by their session
	if !authenticated || reaction.Anonymous {
		if reaction.SessionID == "" {
			reaction.SessionID = AnonSessionID()
		}
	}

	// rate-limit members (guests are throttled by session synthesis upstream)
	if authenticated {
		exceeded, err := m.rateExceeded(reaction.UserID)
		if err != nil {
			return nil, "", err
		}
		if exceeded {
			return nil, "", apperror.ErrRateLimited
		}
	}

	if authenticated && !reaction.Anonymous {
		usr, err := m.GetUserName(reaction.UserID.Hex())
		if err != nil {
			return nil, "", ErrInvalidUser
		}
		reaction.UserName = usr
	} else {
		reaction.UserName = ""
	}

	// one reaction per identity & track - re-reacting replaces the previous kind
	filter := identityFilter(&reaction)

	fields := bson.D{
		{Key: "$set", Value: bson.D{{Key: "trackID", Value: reaction.TrackID}}},
		{Key: "$set", Value: bson.D{{Key: "userID", Value: reaction.UserID}}},
		{Key: "$set", Value: bson.D{{Key: "userName", Value: reaction.UserName}}},
		{Key: "$set", Value: bson.D{{Key: "sessionID", Value: reaction.SessionID}}},
		{Key: "$set", Value: bson.D{{Key: "anonymous", Value: reaction.Anonymous}}},
		{Key: "$set", Value: bson.D{{Key: "kind", Value: reaction.Kind}}},
		{Key: "$set", Value: bson.D{{Key: "comment", Value: reaction.Comment}}},
		{Key: "$set", Value: bson.D{{Key: "deviceType", Value: reaction.DeviceType}}},
		{Key: "$set", Value: bson.D{{Key: "reactionTS", Value: time.Now()}}},
	}

	opts := options.Update().SetUpsert(true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, fields, opts)
	if err != nil {
		return nil, "", helpers.WrapError(err, helpers.FuncName())
	}

	// clients need the reaction's ID to change or revoke it later;
	// on an update-in-place the upsert does not return it, so read it back
	var reactionID string
	if result.UpsertedID != nil {
		reactionID = result.UpsertedID.(primitive.ObjectID).Hex()
	} else {
		stored := struct {
			ID primitive.ObjectID `bson:"_id"`
		}{}
		idOpts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
		err = m.Collection.FindOne(ctx, filter, idOpts).Decode(&stored)
		if err != nil {
			return nil, "", helpers.WrapError(err, helpers.FuncName())
		}
		reactionID = stored.ID.Hex()
	}

	stats, err := m.recomputeStats(reaction.TrackID)
	if err != nil {
		return nil, "", err
	}

	return stats, reactionID, nil
}

// UpdateReaction changes the kind and/or comment of an existing reaction.
// Members may only touch their own reactions; guest reactions require the
// matching session key
func (m ReactionModel) UpdateReaction(reactionID string, userID string, sessionID string, kind string, comment string) (*FeedbackStats, error) {

	if KindOrdinal(kind) == 0 {
		return nil, ErrReactionKindInvalid
	}

	current, err := m.getOwned(reactionID, userID, sessionID)
	if err != nil {
		return nil, err
	}

	filter := bson.D{{Key: "_id", Value: current.ID}}
	fields := bson.D{
		{Key: "$set", Value: bson.D{{Key: "kind", Value: kind}}},
		{Key: "$set", Value: bson.D{{Key: "comment", Value: comment}}},
		{Key: "$set", Value: bson.D{{Key: "reactionTS", Value: time.Now()}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = m.Collection.UpdateOne(ctx, filter, fields)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return m.recomputeStats(current.TrackID)
}

// DeleteReaction revokes a reaction, subject to the same ownership rules
// as UpdateReaction
func (m ReactionModel) DeleteReaction(reactionID string, userID string, sessionID string) (*FeedbackStats, error) {

	current, err := m.getOwned(reactionID, userID, sessionID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = m.Collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: current.ID}})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return m.recomputeStats(current.TrackID)
}

// GetStats returns the denormalized summary of a track.
// Tracks without any reaction yield a zeroed summary, not an error
func (m ReactionModel) GetStats(trackID string) (*FeedbackStats, error) {

	trackOID := ObjectID(trackID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats := FeedbackStats{}

	err := m.StatsCollection.FindOne(ctx, bson.M{"trackID": trackOID}).Decode(&stats)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &FeedbackStats{TrackID: trackOID}, nil
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &stats, nil
}

// GetUserReaction returns the reaction of an identity to a track
// ("" means no reaction yet)
func (m ReactionModel) GetUserReaction(trackID string, userID string, sessionID string) (string, error) {

	trackOID := ObjectID(trackID)

	filter := append(bson.D{{Key: "trackID", Value: trackOID}}, identityQuery(userID, sessionID)...)

	fields := bson.D{
		{Key: "_id", Value: 0}, // _id is always delivered unless explicitly excluded
		{Key: "kind", Value: 1},
	}

	opts := options.FindOne().SetProjection(fields)

	data := struct {
		Kind string `bson:"kind"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, filter, opts).Decode(&data)
	if err != nil {
		// it's NOT an error if the user didn't react
		if err != mongo.ErrNoDocuments {
			return "", helpers.WrapError(err, helpers.FuncName())
		}
	}
	return data.Kind, nil
}

// identityQuery selects the reactions of one identity - members by their
// userID, guests by their session key
func identityQuery(userID string, sessionID string) bson.D {
	if userID != "" {
		return bson.D{{Key: "userID", Value: ObjectID(userID)}}
	}
	return bson.D{{Key: "sessionID", Value: sessionID}}
}

// GetUserReactions returns the reaction actions of an identity - members
// by their token ID, guests by their session key.
// usually used for items displayed in lists
func (m ReactionModel) GetUserReactions(userID string, sessionID string) ([]UserReaction, error) {

	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "trackID", Value: 1},
		{Key: "kind", Value: 1},
	}

	filter := identityQuery(userID, sessionID)

	opts := options.Find().SetProjection(fields).SetLimit(100)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var reactions []UserReaction

	err = cursor.All(ctx, &reactions)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if reactions == nil {
		return nil, apperror.ErrNoData
	}

	return reactions, nil
}

// GetTrackReactions lists the most recent reactions to a track
func (m ReactionModel) GetTrackReactions(trackID string, limit int64) ([]Reaction, error) {

	trackOID := ObjectID(trackID)

	sort := bson.D{
		{Key: "reactionTS", Value: -1},
	}

	opts := options.Find().SetLimit(limit).SetSort(sort)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{"trackID": trackOID}, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var reactions []Reaction

	err = cursor.All(ctx, &reactions)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if reactions == nil {
		return nil, apperror.ErrNoData
	}

	// hide the names of anonymous members
	for i := range reactions {
		if reactions[i].Anonymous {
			reactions[i].UserID = primitive.NilObjectID
			reactions[i].UserName = ""
		}
	}

	return reactions, nil
}

// getOwned reads a reaction and enforces the ownership rules
func (m ReactionModel) getOwned(reactionID string, userID string, sessionID string) (*Reaction, error) {

	oid, err := primitive.ObjectIDFromHex(reactionID)
	if err != nil {
		return nil, ErrReactionNotFound
	}

	reaction := Reaction{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&reaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrReactionNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if !ownsReaction(&reaction, userID, sessionID) {
		return nil, ErrNotReactionOwner
	}

	return &reaction, nil
}

// ownsReaction decides whether the caller may change a reaction.
// member reactions require the matching token identity, guest and
// anonymous reactions the matching session key
func ownsReaction(reaction *Reaction, userID string, sessionID string) bool {
	if reaction.UserID != primitive.NilObjectID && !reaction.Anonymous {
		return userID != "" && ObjectID(userID) == reaction.UserID
	}
	return sessionID != "" && sessionID == reaction.SessionID
}

// rateExceeded counts a member's reactions within the rolling window
func (m ReactionModel) rateExceeded(userOID primitive.ObjectID) (bool, error) {

	filter := bson.D{
		{Key: "userID", Value: userOID},
		{Key: "reactionTS", Value: bson.D{
			{Key: "$gte", Value: time.Now().Add(-reactionRateWindow)},
		}},
	}

	opts := options.Count().SetMaxTime(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cnt, err := m.Collection.CountDocuments(ctx, filter, opts)
	if err != nil {
		return false, helpers.WrapError(err, helpers.FuncName())
	}

	return rateLimitReached(cnt), nil
}

// rateLimitReached is the pure decision - cnt counts the reactions
// already cast within the rolling window
func rateLimitReached(cnt int64) bool {
	return cnt >= reactionRateLimit
}

// recomputeStats rebuilds a track's summary from scratch and stores it,
// both in the stats collection and denormalized in the track document
func (m ReactionModel) recomputeStats(trackOID primitive.ObjectID) (*FeedbackStats, error) {

	// serialize concurrent recomputes of the same track
	l := lockTrack(trackOID.Hex())
	l.Lock()
	defer l.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{"trackID": trackOID})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var reactions []Reaction
	err = cursor.All(ctx, &reactions)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	stats := tallyStats(trackOID, reactions)

	fields := bson.D{
		{Key: "$set", Value: bson.D{{Key: "trackID", Value: stats.TrackID}}},
		{Key: "$set", Value: bson.D{{Key: "loves", Value: stats.Loves}}},
		{Key: "$set", Value: bson.D{{Key: "likes", Value: stats.Likes}}},
		{Key: "$set", Value: bson.D{{Key: "mehs", Value: stats.Mehs}}},
		{Key: "$set", Value: bson.D{{Key: "dislikes", Value: stats.Dislikes}}},
		{Key: "$set", Value: bson.D{{Key: "total", Value: stats.Total}}},
		{Key: "$set", Value: bson.D{{Key: "score", Value: stats.Score}}},
		{Key: "$set", Value: bson.D{{Key: "updatedTS", Value: stats.UpdatedTS}}},
	}

	opts := options.Update().SetUpsert(true)

	_, err = m.StatsCollection.UpdateOne(ctx, bson.M{"trackID": trackOID}, fields, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// pass the summary to the referenced track
	// which will store it in its document
	feedback := &FeedbackInfo{
		TrackOID:  trackOID,
		Score:     stats.Score,
		Loves:     stats.Loves,
		Likes:     stats.Likes,
		Mehs:      stats.Mehs,
		Dislikes:  stats.Dislikes,
		Total:     stats.Total,
		TouchedTS: time.Now(),
	}

	err = m.SetFeedback(feedback)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
