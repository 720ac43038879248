package models

import (
	"context"
	"sound-garage/apperror"
	"sound-garage/database"
	"sound-garage/helpers"
	"sound-garage/lookups"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Track is the "interface" used for client communication
type Track struct {
	ID              primitive.ObjectID `json:"id" bson:"_id"`
	MetaInfo        Header             `json:"metaInfo" bson:"metaInfo"`
	VisibilityCode  int32              `json:"visibilityCode" bson:"visibilityCD"`
	VisibilityText  string             `json:"visibilityText" bson:"-"`
	Title           string             `json:"title" bson:"title"`
	ArtistID        primitive.ObjectID `json:"artistID" bson:"artistID"`
	ArtistName      string             `json:"artistName" bson:"artistName"` // denormalized for listings
	GenreCode       int32              `json:"genreCode" bson:"genreCD"`
	GenreText       string             `json:"genreText" bson:"-"`
	QualityCode     int32              `json:"qualityCode" bson:"qualityCD"`
	QualityText     string             `json:"qualityText" bson:"-"`
	ReleaseTypeCode int32              `json:"releaseTypeCode" bson:"releaseTypeCD"`
	ReleaseTypeText string             `json:"releaseTypeText" bson:"-"`
	AudioFileID     string             `json:"audioFileID" bson:"audioFileID"`             // opaque storage key
	CoverArtID      string             `json:"coverArtID" bson:"coverArtID,omitempty"`     // opaque storage key
	AllowDownload   bool               `json:"allowDownload" bson:"allowDownload"`         // streaming only when false
	Duration        int32              `json:"duration" bson:"duration"`                   // seconds
	Feedback        FeedbackStats      `json:"feedback" bson:"feedback"`                   // maintained by the aggregator
}

// TrackListItem is the reduced/simplified model used for listings
type TrackListItem struct {
	ID         primitive.ObjectID `json:"id"`
	CreatedTS  time.Time          `json:"createdTS"`
	CreatedID  primitive.ObjectID `json:"createdID"`
	ArtistName string             `json:"artistName"`
	Title      string             `json:"title"`
	GenreCode  int32              `json:"genreCode"`
	GenreText  string             `json:"genreText"`
	Duration   int32              `json:"duration"`
	Score      float64            `json:"score"`
	Total      int32              `json:"total"`
	Plays      int64              `json:"plays"`
}

// TrackSearch is passed as the search params
type TrackSearch struct {
	UserID     string // used to look-up Role
	GenreText  string // client should pass readable text in URL rather than codes
	SearchTerm string
}

// TrackModel provides the logic to the interface and access to the database
type TrackModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	// functions from the user model are injected here
	GetUserName       func(ID string) (string, error)
	CredentialsReader func(UserID string) (*Credentials, error)
}

// Validate checks given values and sets defaults where applicable (immutable)
func (m TrackModel) Validate(track Track) (*Track, error) {

	cleaned := track

	cleaned.Title = strings.TrimSpace(cleaned.Title)
	if cleaned.Title == "" {
		return nil, ErrTrackTitleMissing
	}

	if cleaned.QualityCode == 0 {
		cleaned.QualityCode = lookups.AudioQuality320k
	}

	return &cleaned, nil
}

// CreateTrack adds a new track - validated by controller
func (m TrackModel) CreateTrack(track *Track) (string, error) {

	// set "system-fields"
	track.ID = primitive.NewObjectID()
	track.MetaInfo.TouchedTS = time.Now()
	track.MetaInfo.Score = 0
	track.MetaInfo.RecVer = 0
	track.Feedback = FeedbackStats{TrackID: track.ID}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, track)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// UpdateTrack modifies the editable fields of a track
// the caller must be the creator (or an admin) and deliver the current recVer
func (m TrackModel) UpdateTrack(track *Track, userID string) error {

	credentials, err := m.CredentialsReader(userID)
	if err != nil {
		return ErrInvalidUser
	}

	current, err := m.GetTrack(track.ID.Hex())
	if err != nil {
		return err
	}

	if current.MetaInfo.CreatedID.Hex() != userID && credentials.RoleCode != lookups.UserRoleAdmin {
		return apperror.ErrDenied
	}

	// optimistic locking
	filter := bson.D{
		{Key: "_id", Value: track.ID},
		{Key: "metaInfo.recVer", Value: track.MetaInfo.RecVer},
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "title", Value: track.Title},
			{Key: "genreCD", Value: track.GenreCode},
			{Key: "qualityCD", Value: track.QualityCode},
			{Key: "releaseTypeCD", Value: track.ReleaseTypeCode},
			{Key: "visibilityCD", Value: track.VisibilityCode},
			{Key: "coverArtID", Value: track.CoverArtID},
			{Key: "allowDownload", Value: track.AllowDownload},
			{Key: "metaInfo.modifiedTS", Value: time.Now()},
			{Key: "metaInfo.modifiedID", Value: ObjectID(userID)},
			{Key: "metaInfo.touchedTS", Value: time.Now()},
		}},
		{Key: "$inc", Value: bson.D{
			{Key: "metaInfo.recVer", Value: 1},
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	// no match means the document changed since it was read
	if result.MatchedCount == 0 {
		return apperror.ErrRecordChanged
	}

	return nil
}

// DeleteTrack removes a track (creator or admin only)
func (m TrackModel) DeleteTrack(trackID string, userID string) error {

	credentials, err := m.CredentialsReader(userID)
	if err != nil {
		return ErrInvalidUser
	}

	current, err := m.GetTrack(trackID)
	if err != nil {
		return err
	}

	if current.MetaInfo.CreatedID.Hex() != userID && credentials.RoleCode != lookups.UserRoleAdmin {
		return apperror.ErrDenied
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = m.Collection.DeleteOne(ctx, bson.M{"_id": current.ID})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// SearchTracks lists or searches tracks
func (m TrackModel) SearchTracks(searchSpecs *TrackSearch) ([]TrackListItem, error) {

	// use original struct to receive selected fields
	fields := bson.D{
		{Key: "_id", Value: 1}, // _id is always delivered unless explicitly excluded (0)
		{Key: "metaInfo", Value: 1},
		{Key: "title", Value: 1},
		{Key: "artistName", Value: 1},
		{Key: "genreCD", Value: 1},
		{Key: "duration", Value: 1},
		{Key: "feedback", Value: 1},
	}

	sort := bson.D{
		{Key: "metaInfo.score", Value: -1},
		{Key: "metaInfo.touchedTS", Value: -1},
	}

	opts := options.Find().SetProjection(fields).SetLimit(20).SetSort(sort)

	filter := bson.D{}

	// genre filter is optional
	genreCode, err := database.GetLookupValue(lookups.LookupType(lookups.LTgenre), searchSpecs.GenreText)
	if err != nil {
		genreCode = lookups.GenreUnknown
	}
	if genreCode != lookups.GenreUnknown {
		filter = append(filter, bson.E{Key: "genreCD", Value: genreCode})
	}

	if searchSpecs.SearchTerm != "" {
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			// LIKE %searchTerm% (case-insensitive)
			bson.D{{Key: "title", Value: primitive.Regex{Pattern: ".*" + searchSpecs.SearchTerm + ".*", Options: "i"}}},
			bson.D{{Key: "artistName", Value: primitive.Regex{Pattern: ".*" + searchSpecs.SearchTerm + ".*", Options: "i"}}},
		}})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var tracks []Track

	err = cursor.All(ctx, &tracks)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if tracks == nil {
		return nil, ErrNoData
	}

	// copy data to reduced list-struct
	var trackList []TrackListItem
	var item TrackListItem

	for _, v := range tracks {
		item.ID = v.ID
		item.CreatedTS = primitive.ObjectID.Timestamp(v.ID)
		item.CreatedID = v.MetaInfo.CreatedID
		item.ArtistName = v.ArtistName
		item.Title = v.Title
		item.GenreCode = v.GenreCode
		item.GenreText = database.GetLookupText(lookups.LookupType(lookups.LTgenre), v.GenreCode)
		item.Duration = v.Duration
		item.Score = v.Feedback.Score
		item.Total = v.Feedback.Total
		item.Plays = v.MetaInfo.Plays

		trackList = append(trackList, item)
	}

	return trackList, nil
}

// Exists reports whether a track is present (cheap ID-only read)
func (m TrackModel) Exists(trackOID primitive.ObjectID) bool {

	fields := bson.D{
		{Key: "_id", Value: 1},
	}

	opts := options.FindOne().SetProjection(fields)

	data := struct {
		ID primitive.ObjectID `bson:"_id"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, bson.M{"_id": trackOID}, opts).Decode(&data)
	return err == nil
}

// GetTrack returns one
func (m TrackModel) GetTrack(trackID string) (*Track, error) {

	id, err := primitive.ObjectIDFromHex(trackID)
	if err != nil {
		return nil, ErrTrackNotFound
	}

	data := Track{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTrackNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	data.MetaInfo.CreatedTS = primitive.ObjectID.Timestamp(data.ID)
	addTrackLookups(&data)

	return &data, nil
}

// GetArtistTracks lists the tracks of an artist
func (m TrackModel) GetArtistTracks(artistID string) ([]TrackListItem, error) {

	fields := bson.D{
		{Key: "_id", Value: 1},
		{Key: "metaInfo", Value: 1},
		{Key: "title", Value: 1},
		{Key: "artistName", Value: 1},
		{Key: "genreCD", Value: 1},
		{Key: "duration", Value: 1},
		{Key: "feedback", Value: 1},
	}

	sort := bson.D{
		{Key: "metaInfo.touchedTS", Value: -1},
	}

	opts := options.Find().SetProjection(fields).SetLimit(50).SetSort(sort)

	filter := bson.D{
		{Key: "artistID", Value: ObjectID(artistID)},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var tracks []Track

	err = cursor.All(ctx, &tracks)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if tracks == nil {
		return nil, ErrNoData
	}

	var trackList []TrackListItem
	var item TrackListItem

	for _, v := range tracks {
		item.ID = v.ID
		item.CreatedTS = primitive.ObjectID.Timestamp(v.ID)
		item.CreatedID = v.MetaInfo.CreatedID
		item.ArtistName = v.ArtistName
		item.Title = v.Title
		item.GenreCode = v.GenreCode
		item.GenreText = database.GetLookupText(lookups.LookupType(lookups.LTgenre), v.GenreCode)
		item.Duration = v.Duration
		item.Score = v.Feedback.Score
		item.Total = v.Feedback.Total
		item.Plays = v.MetaInfo.Plays

		trackList = append(trackList, item)
	}

	return trackList, nil
}

// SetFeedback stores the recomputed summary in the track's document
// (injected into the reaction model)
func (m TrackModel) SetFeedback(feedback *FeedbackInfo) error {

	filter := bson.D{{Key: "_id", Value: feedback.TrackOID}}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "feedback.trackID", Value: feedback.TrackOID},
			{Key: "feedback.loves", Value: feedback.Loves},
			{Key: "feedback.likes", Value: feedback.Likes},
			{Key: "feedback.mehs", Value: feedback.Mehs},
			{Key: "feedback.dislikes", Value: feedback.Dislikes},
			{Key: "feedback.total", Value: feedback.Total},
			{Key: "feedback.score", Value: feedback.Score},
			{Key: "feedback.updatedTS", Value: feedback.TouchedTS},
			{Key: "metaInfo.score", Value: feedback.Score},
			{Key: "metaInfo.touchedTS", Value: feedback.TouchedTS},
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// internal helpers
// actually that's not immutable, but ok here
func addTrackLookups(track *Track) *Track {
	track.VisibilityText = database.GetLookupText(lookups.LookupType(lookups.LTvisibility), track.VisibilityCode)
	track.GenreText = database.GetLookupText(lookups.LookupType(lookups.LTgenre), track.GenreCode)
	track.QualityText = database.GetLookupText(lookups.LookupType(lookups.LTaudioQuality), track.QualityCode)
	track.ReleaseTypeText = database.GetLookupText(lookups.LookupType(lookups.LTreleaseType), track.ReleaseTypeCode)

	return track
}
