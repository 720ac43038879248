package models

import (
	"context"
	"sort"
	"sound-garage/apperror"
	"sound-garage/helpers"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// supported timeframes (wire format)
const (
	Timeframe1h  = "1h"
	Timeframe24h = "24h"
	Timeframe7d  = "7d"
	Timeframe30d = "30d"
)

// feedback-stream sort modes
const (
	StreamRecent        = "recent"
	StreamTrending      = "trending"
	StreamControversial = "controversial"
)

// a computation keeps at most this many tracks per timeframe
const trendingListSize = 100

// TrendingEntry is one row of a ranked list, replaced as a whole per computation
type TrendingEntry struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	TrackID    primitive.ObjectID `json:"trackID" bson:"trackID"`
	Timeframe  string             `json:"timeframe" bson:"timeframe"`
	Category   string             `json:"category" bson:"category"` // reserved, currently always "all"
	Rank       int32              `json:"rank" bson:"rank"`
	Score      float64            `json:"score" bson:"score"`
	Reactions  int64              `json:"reactions" bson:"reactions"` // count within the window
	ComputedTS time.Time          `json:"computedTS" bson:"computedTS"`
}

// TrendingTrack is the joined model sent to clients
type TrendingTrack struct {
	Rank       int32              `json:"rank"`
	Score      float64            `json:"score"`
	TrackID    primitive.ObjectID `json:"trackID"`
	Title      string             `json:"title"`
	ArtistName string             `json:"artistName"`
	GenreCode  int32              `json:"genreCode"`
	Duration   int32              `json:"duration"`
	Plays      int64              `json:"plays"`
	Stats      FeedbackStats      `json:"stats"`
}

// StreamItem is one row of the public feedback stream
type StreamItem struct {
	TrackID    primitive.ObjectID `json:"trackID"`
	Title      string             `json:"title"`
	ArtistName string             `json:"artistName"`
	Kind       string             `json:"kind,omitempty"`
	UserName   string             `json:"userName,omitempty"`
	ReactionTS time.Time          `json:"reactionTS,omitempty"`
	Score      float64            `json:"score"`
	Rank       int32              `json:"rank,omitempty"`
}

// TrendingModel provides the logic to the ranked lists and access to the database
type TrendingModel struct {
	Client             *mongo.Client
	Collection         *mongo.Collection // trendingTracks
	ReactionCollection *mongo.Collection
	TrackCollection    *mongo.Collection
	StatsCollection    *mongo.Collection
}

// NormalizeTimeframe maps unknown timeframes to the daily list
func NormalizeTimeframe(timeframe string) string {
	switch timeframe {
	case Timeframe1h, Timeframe24h, Timeframe7d, Timeframe30d:
		return timeframe
	default:
		return Timeframe24h
	}
}

// TimeframeWindow returns the length of a timeframe's window
func TimeframeWindow(timeframe string) time.Duration {
	switch timeframe {
	case Timeframe1h:
		return time.Hour
	case Timeframe24h:
		return 24 * time.Hour
	case Timeframe7d:
		return 7 * 24 * time.Hour
	case Timeframe30d:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// recencyWeight expresses how fresh a reaction is within the window:
// 0 at the cutoff, approaching 1 near "now". values outside the window clamp
func recencyWeight(ts time.Time, cutoff time.Time, window time.Duration) float64 {
	w := float64(ts.Sub(cutoff)) / float64(window)
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// candidate accumulates a track's weighted feedback within the window
type candidate struct {
	trackOID    primitive.ObjectID
	weightedSum float64
	count       int64
}

func (c candidate) score() float64 {
	n := c.count
	if n < 1 {
		n = 1
	}
	return c.weightedSum / float64(n)
}

// rankCandidates orders the candidates and assigns ranks 1..trendingListSize.
// ties break on count, then on the track ID, so repeated runs over the same
// data produce the same list
func rankCandidates(candidates []candidate, timeframe string, computedTS time.Time) []TrendingEntry {

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := candidates[i].score(), candidates[j].score()
		if si != sj {
			return si > sj
		}
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].trackOID.Hex() < candidates[j].trackOID.Hex()
	})

	if len(candidates) > trendingListSize {
		candidates = candidates[:trendingListSize]
	}

	entries := make([]TrendingEntry, len(candidates))
	for i, c := range candidates {
		entries[i] = TrendingEntry{
			TrackID:    c.trackOID,
			Timeframe:  timeframe,
			Category:   "all",
			Rank:       int32(i + 1),
			Score:      c.score(),
			Reactions:  c.count,
			ComputedTS: computedTS,
		}
	}

	return entries
}

// ComputeTrending rebuilds the ranked list of a timeframe from the reactions
// within its window. The old list is dropped and the new one inserted in a
// single transaction, so readers never observe a partial list
func (m TrendingModel) ComputeTrending(timeframe string) (int, error) {

	timeframe = NormalizeTimeframe(timeframe)
	window := TimeframeWindow(timeframe)
	now := time.Now()
	cutoff := now.Add(-window)

	// 1. collect the reactions of the window
	fields := bson.D{
		{Key: "_id", Value: 0},
		{Key: "trackID", Value: 1},
		{Key: "kind", Value: 1},
		{Key: "reactionTS", Value: 1},
	}

	filter := bson.D{
		{Key: "reactionTS", Value: bson.D{
			{Key: "$gte", Value: cutoff},
		}},
	}

	opts := options.Find().SetProjection(fields)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := m.ReactionCollection.Find(ctx, filter, opts)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	var reactions []Reaction
	err = cursor.All(ctx, &reactions)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// 2. accumulate weighted sentiment per track
	tallies := make(map[primitive.ObjectID]*candidate)
	for _, r := range reactions {
		ordinal := KindOrdinal(r.Kind)
		if ordinal == 0 {
			continue
		}

		c, ok := tallies[r.TrackID]
		if !ok {
			c = &candidate{trackOID: r.TrackID}
			tallies[r.TrackID] = c
		}

		c.weightedSum += float64(ordinal) * recencyWeight(r.ReactionTS, cutoff, window)
		c.count++
	}

	candidates := make([]candidate, 0, len(tallies))
	for _, c := range tallies {
		candidates = append(candidates, *c)
	}

	entries := rankCandidates(candidates, timeframe, now)

	// 3. replace the timeframe's list atomically
	wc := writeconcern.New(writeconcern.WMajority())
	rc := readconcern.Snapshot()
	txnOpts := options.Transaction().SetWriteConcern(wc).SetReadConcern(rc)

	session, err := m.Client.StartSession()
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {

		_, err := m.Collection.DeleteMany(sessCtx, bson.M{"timeframe": timeframe})
		if err != nil {
			return nil, err
		}

		if len(entries) == 0 {
			return nil, nil
		}

		docs := make([]interface{}, len(entries))
		for i := range entries {
			entries[i].ID = primitive.NewObjectID()
			docs[i] = entries[i]
		}

		_, err = m.Collection.InsertMany(sessCtx, docs)
		return nil, err
	}, txnOpts)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// distinct tracks processed, not the capped list length
	return len(candidates), nil
}

// GetTrendingTracks returns the ranked list of a timeframe joined with the
// track documents. Entries whose track disappeared are dropped silently
func (m TrendingModel) GetTrendingTracks(timeframe string, category string, limit int64) ([]TrendingTrack, error) {

	timeframe = NormalizeTimeframe(timeframe)
	if category == "" {
		category = "all" // the only category computed so far
	}

	if limit <= 0 || limit > trendingListSize {
		limit = trendingListSize
	}

	sortOrder := bson.D{
		{Key: "rank", Value: 1},
	}

	opts := options.Find().SetLimit(limit).SetSort(sortOrder)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.D{
		{Key: "timeframe", Value: timeframe},
		{Key: "category", Value: category},
	}

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var entries []TrendingEntry
	err = cursor.All(ctx, &entries)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if entries == nil {
		return nil, apperror.ErrNoData
	}

	// join the track documents in one query
	ids := make([]primitive.ObjectID, len(entries))
	for i, e := range entries {
		ids[i] = e.TrackID
	}

	trackCursor, err := m.TrackCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var tracks []Track
	err = trackCursor.All(ctx, &tracks)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	trackMap := make(map[primitive.ObjectID]*Track, len(tracks))
	for i := range tracks {
		trackMap[tracks[i].ID] = &tracks[i]
	}

	var result []TrendingTrack
	for _, e := range entries {
		t, ok := trackMap[e.TrackID]
		if !ok {
			// dangling entry, track was deleted after the computation
			continue
		}

		result = append(result, TrendingTrack{
			Rank:       e.Rank,
			Score:      e.Score,
			TrackID:    t.ID,
			Title:      t.Title,
			ArtistName: t.ArtistName,
			GenreCode:  t.GenreCode,
			Duration:   t.Duration,
			Plays:      t.MetaInfo.Plays,
			Stats:      t.Feedback,
		})
	}

	if result == nil {
		return nil, apperror.ErrNoData
	}

	return result, nil
}

// GetFeedbackStream delivers the public activity feed in one of three flavours
func (m TrendingModel) GetFeedbackStream(sortMode string, limit int64, offset int64) ([]StreamItem, error) {

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var items []StreamItem
	var err error

	switch sortMode {
	case StreamTrending:
		items, err = m.streamTrending(limit + offset)
	case StreamControversial:
		items, err = m.streamControversial(limit + offset)
	default:
		items, err = m.streamRecent(limit + offset)
	}
	if err != nil {
		return nil, err
	}

	// simple offset paging, the feed is short-lived anyway
	if offset >= int64(len(items)) {
		return nil, apperror.ErrNoData
	}
	items = items[offset:]
	if int64(len(items)) > limit {
		items = items[:limit]
	}

	return items, nil
}

// latest reactions first
func (m TrendingModel) streamRecent(limit int64) ([]StreamItem, error) {

	sortOrder := bson.D{
		{Key: "reactionTS", Value: -1},
	}

	opts := options.Find().SetLimit(limit).SetSort(sortOrder)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.ReactionCollection.Find(ctx, bson.D{}, opts)
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

	ids := make([]primitive.ObjectID, len(reactions))
	for i, r := range reactions {
		ids[i] = r.TrackID
	}

	trackMap, err := m.trackTitles(ctx, ids)
	if err != nil {
		return nil, err
	}

	var items []StreamItem
	for _, r := range reactions {
		t, ok := trackMap[r.TrackID]
		if !ok {
			continue
		}

		userName := r.UserName
		if r.Anonymous {
			userName = ""
		}

		items = append(items, StreamItem{
			TrackID:    r.TrackID,
			Title:      t.Title,
			ArtistName: t.ArtistName,
			Kind:       r.Kind,
			UserName:   userName,
			ReactionTS: r.ReactionTS,
			Score:      t.Feedback.Score,
		})
	}

	if items == nil {
		return nil, apperror.ErrNoData
	}

	return items, nil
}

// daily trending order
func (m TrendingModel) streamTrending(limit int64) ([]StreamItem, error) {

	trending, err := m.GetTrendingTracks(Timeframe24h, "", limit)
	if err != nil {
		return nil, err
	}

	var items []StreamItem
	for _, t := range trending {
		items = append(items, StreamItem{
			TrackID:    t.TrackID,
			Title:      t.Title,
			ArtistName: t.ArtistName,
			Score:      t.Score,
			Rank:       t.Rank,
		})
	}

	return items, nil
}

// tracks that split their audience - both camps need to be present,
// ordered by the size of the smaller camp
func (m TrendingModel) streamControversial(limit int64) ([]StreamItem, error) {

	filter := bson.D{
		{Key: "loves", Value: bson.D{{Key: "$gt", Value: 0}}},
		{Key: "dislikes", Value: bson.D{{Key: "$gt", Value: 0}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.StatsCollection.Find(ctx, filter)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var stats []FeedbackStats
	err = cursor.All(ctx, &stats)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if stats == nil {
		return nil, apperror.ErrNoData
	}

	controversy := func(s FeedbackStats) int32 {
		if s.Loves < s.Dislikes {
			return s.Loves
		}
		return s.Dislikes
	}

	sort.Slice(stats, func(i, j int) bool {
		ci, cj := controversy(stats[i]), controversy(stats[j])
		if ci != cj {
			return ci > cj
		}
		return stats[i].Total > stats[j].Total
	})

	if int64(len(stats)) > limit {
		stats = stats[:limit]
	}

	ids := make([]primitive.ObjectID, len(stats))
	for i, s := range stats {
		ids[i] = s.TrackID
	}

	trackMap, err := m.trackTitles(ctx, ids)
	if err != nil {
		return nil, err
	}

	var items []StreamItem
	for _, s := range stats {
		t, ok := trackMap[s.TrackID]
		if !ok {
			continue
		}

		items = append(items, StreamItem{
			TrackID:    s.TrackID,
			Title:      t.Title,
			ArtistName: t.ArtistName,
			Score:      s.Score,
		})
	}

	if items == nil {
		return nil, apperror.ErrNoData
	}

	return items, nil
}

// trackTitles loads a reduced view of the given tracks, keyed by ID
func (m TrendingModel) trackTitles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Track, error) {

	fields := bson.D{
		{Key: "_id", Value: 1},
		{Key: "title", Value: 1},
		{Key: "artistName", Value: 1},
		{Key: "feedback", Value: 1},
	}

	opts := options.Find().SetProjection(fields)

	cursor, err := m.TrackCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var tracks []Track
	err = cursor.All(ctx, &tracks)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	trackMap := make(map[primitive.ObjectID]*Track, len(tracks))
	for i := range tracks {
		trackMap[tracks[i].ID] = &tracks[i]
	}

	return trackMap, nil
}
