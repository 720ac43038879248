package models

import (
	"context"
	"sound-garage/helpers"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Artist is the "interface" used for client communication
type Artist struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	MetaInfo  Header             `json:"metaInfo" bson:"metaInfo"`
	Name      string             `json:"name" bson:"name"`
	Bio       string             `json:"bio" bson:"bio,omitempty"`
	Homepage  string             `json:"homepage" bson:"homepage,omitempty"`
	GenreCode int32              `json:"genreCode" bson:"genreCD"`
	Followers int64              `json:"followers" bson:"-"` // counted on read
}

// ArtistModel provides the logic to the interface and access to the database
type ArtistModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	// counted from the social collection, maintained by the user model
	CountFollowers func(artistID string) (int64, error)
}

// Validate checks given values (immutable)
func (m ArtistModel) Validate(artist Artist) (*Artist, error) {

	cleaned := artist

	cleaned.Name = strings.TrimSpace(cleaned.Name)
	if cleaned.Name == "" {
		return nil, ErrArtistNameMissing
	}

	return &cleaned, nil
}

// CreateArtist adds a new artist profile - validated by controller
func (m ArtistModel) CreateArtist(artist *Artist) (string, error) {

	artist.ID = primitive.NewObjectID()
	artist.MetaInfo.TouchedTS = time.Now()
	artist.MetaInfo.RecVer = 0

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, artist)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetArtist returns one, including the current follower count
func (m ArtistModel) GetArtist(artistID string) (*Artist, error) {

	id, err := primitive.ObjectIDFromHex(artistID)
	if err != nil {
		return nil, ErrArtistNotFound
	}

	data := Artist{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrArtistNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	data.MetaInfo.CreatedTS = primitive.ObjectID.Timestamp(data.ID)
	data.Followers, _ = m.CountFollowers(artistID)

	return &data, nil
}

// SearchArtists lists or searches artist profiles
func (m ArtistModel) SearchArtists(searchTerm string) ([]Artist, error) {

	fields := bson.D{
		{Key: "_id", Value: 1},
		{Key: "metaInfo", Value: 1},
		{Key: "name", Value: 1},
		{Key: "genreCD", Value: 1},
	}

	sort := bson.D{
		{Key: "name", Value: 1},
	}

	opts := options.Find().SetProjection(fields).SetLimit(20).SetSort(sort)

	filter := bson.D{}
	if searchTerm != "" {
		filter = bson.D{
			{Key: "name", Value: primitive.Regex{Pattern: ".*" + searchTerm + ".*", Options: "i"}},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var artists []Artist

	err = cursor.All(ctx, &artists)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if artists == nil {
		return nil, ErrNoData
	}

	return artists, nil
}

// UpdateArtist modifies the editable fields of a profile
func (m ArtistModel) UpdateArtist(artist *Artist) error {

	// optimistic locking
	filter := bson.D{
		{Key: "_id", Value: artist.ID},
		{Key: "metaInfo.recVer", Value: artist.MetaInfo.RecVer},
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: artist.Name},
			{Key: "bio", Value: artist.Bio},
			{Key: "homepage", Value: artist.Homepage},
			{Key: "genreCD", Value: artist.GenreCode},
			{Key: "metaInfo.modifiedTS", Value: time.Now()},
			{Key: "metaInfo.modifiedID", Value: artist.MetaInfo.ModifiedID},
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

	if result.MatchedCount == 0 {
		return ErrArtistNotFound
	}

	return nil
}
