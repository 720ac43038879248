package models

import (
	"context"
	"sound-garage/apperror"
	"sound-garage/helpers"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlaylistEntry references a track within a playlist (nested array)
type PlaylistEntry struct {
	TrackID primitive.ObjectID `json:"trackID" bson:"trackID"`
	AddedTS time.Time          `json:"addedTS" bson:"addedTS"`
}

// Playlist is the "interface" used for client communication
type Playlist struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	MetaInfo       Header             `json:"metaInfo" bson:"metaInfo"`
	Name           string             `json:"name" bson:"name"`
	VisibilityCode int32              `json:"visibilityCode" bson:"visibilityCD"`
	Entries        []PlaylistEntry    `json:"entries" bson:"entries"`
}

// PlaylistModel provides the logic to the interface and access to the database
type PlaylistModel struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	// functions from the user model are injected here
	GetUserName func(ID string) (string, error)
}

// Validate checks given values (immutable)
func (m PlaylistModel) Validate(playlist Playlist) (*Playlist, error) {

	cleaned := playlist

	cleaned.Name = strings.TrimSpace(cleaned.Name)
	if cleaned.Name == "" {
		return nil, ErrPlaylistNameMissing
	}

	return &cleaned, nil
}

// CreatePlaylist adds a new playlist - validated by controller
func (m PlaylistModel) CreatePlaylist(playlist *Playlist) (string, error) {

	playlist.ID = primitive.NewObjectID()
	playlist.MetaInfo.TouchedTS = time.Now()
	playlist.MetaInfo.RecVer = 0
	if playlist.Entries == nil {
		playlist.Entries = []PlaylistEntry{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := m.Collection.InsertOne(ctx, playlist)
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// GetPlaylist returns one - private lists only to their creator
func (m PlaylistModel) GetPlaylist(playlistID string, userID string) (*Playlist, error) {

	id, err := primitive.ObjectIDFromHex(playlistID)
	if err != nil {
		return nil, ErrPlaylistNotFound
	}

	data := Playlist{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPlaylistNotFound
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	if data.VisibilityCode != 0 && data.MetaInfo.CreatedID.Hex() != userID {
		return nil, apperror.ErrPrivate
	}

	data.MetaInfo.CreatedTS = primitive.ObjectID.Timestamp(data.ID)

	return &data, nil
}

// GetUserPlaylists lists the playlists of a user
// other users only see the public ones
func (m PlaylistModel) GetUserPlaylists(ownerID string, requestorID string) ([]Playlist, error) {

	filter := bson.D{
		{Key: "metaInfo.createdID", Value: ObjectID(ownerID)},
	}

	// restrict to public lists when browsing someone else's profile
	if ownerID != requestorID {
		filter = append(filter, bson.E{Key: "visibilityCD", Value: 0})
	}

	sort := bson.D{
		{Key: "metaInfo.touchedTS", Value: -1},
	}

	opts := options.Find().SetLimit(50).SetSort(sort)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var playlists []Playlist

	err = cursor.All(ctx, &playlists)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// check for empty result set (no error raised by find)
	if playlists == nil {
		return nil, ErrNoData
	}

	return playlists, nil
}

// AddTrack appends a track to a playlist (no duplicates)
func (m PlaylistModel) AddTrack(playlistID string, trackID string, userID string) error {

	current, err := m.GetPlaylist(playlistID, userID)
	if err != nil {
		return err
	}

	if current.MetaInfo.CreatedID.Hex() != userID {
		return apperror.ErrDenied
	}

	trackOID := ObjectID(trackID)
	for _, e := range current.Entries {
		if e.TrackID == trackOID {
			// already contained, nothing to do
			return nil
		}
	}

	filter := bson.D{{Key: "_id", Value: current.ID}}

	update := bson.D{
		{Key: "$push", Value: bson.D{
			{Key: "entries", Value: PlaylistEntry{TrackID: trackOID, AddedTS: time.Now()}},
		}},
		{Key: "$set", Value: bson.D{
			{Key: "metaInfo.touchedTS", Value: time.Now()},
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// RemoveTrack removes a track from a playlist
func (m PlaylistModel) RemoveTrack(playlistID string, trackID string, userID string) error {

	current, err := m.GetPlaylist(playlistID, userID)
	if err != nil {
		return err
	}

	if current.MetaInfo.CreatedID.Hex() != userID {
		return apperror.ErrDenied
	}

	filter := bson.D{{Key: "_id", Value: current.ID}}

	update := bson.D{
		{Key: "$pull", Value: bson.D{
			{Key: "entries", Value: bson.D{{Key: "trackID", Value: ObjectID(trackID)}}},
		}},
		{Key: "$set", Value: bson.D{
			{Key: "metaInfo.touchedTS", Value: time.Now()},
		}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// DeletePlaylist removes a playlist (creator only)
func (m PlaylistModel) DeletePlaylist(playlistID string, userID string) error {

	current, err := m.GetPlaylist(playlistID, userID)
	if err != nil {
		return err
	}

	if current.MetaInfo.CreatedID.Hex() != userID {
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
