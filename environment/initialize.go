package environment

import (
	"os"
	"sound-garage/analytics"
	"sound-garage/client"
	"sound-garage/database"
	"sound-garage/models"

	"github.com/go-redis/redis/v8"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Environment is used for dependency-injection (package de-coupling)
type Environment struct {
	Tracker       *analytics.Tracker
	Listeners     *analytics.Listeners
	Requests      *client.Registry
	UserModel     models.UserModel
	TrackModel    models.TrackModel
	ReactionModel models.ReactionModel
	TrendingModel models.TrendingModel
	ArtistModel   models.ArtistModel
	PlaylistModel models.PlaylistModel
}

// newEnv operates as the constructor to initialize the collection references (private)
func newEnv(mongoClient *mongo.Client, redisClient *redis.Client, influxClient *influxdb2.Client) *Environment {
	env := &Environment{}

	db := mongoClient.Database(os.Getenv("DB_NAME"))

	// the in-memory request registry filters page refreshes (play counting)
	env.Requests = new(client.Registry)
	env.Requests.Initialize()

	// prepare analytics gathering (plays & searches)
	// always create the objects so no further checking is needed in the models
	env.Tracker = new(analytics.Tracker)
	env.Tracker.SetConnections(influxClient, map[string]*mongo.Collection{
		"tracks": db.Collection("tracks"),
	})
	env.Tracker.Requests = env.Requests

	org := os.Getenv("ANALYTICS_ORG")
	c := *influxClient
	env.Tracker.PlayAPI.WriteAPI = c.WriteAPIBlocking(org, os.Getenv("ANALYTICS_PLAYS_BUCKET"))
	env.Tracker.PlayAPI.QueryAPI = c.QueryAPI(org)
	env.Tracker.PlayAPI.DeleteAPI = c.DeleteAPI()
	env.Tracker.SearchAPI.WriteAPI = c.WriteAPIBlocking(org, os.Getenv("ANALYTICS_SEARCHES_BUCKET"))
	env.Tracker.SearchAPI.QueryAPI = c.QueryAPI(org)
	env.Tracker.SearchAPI.DeleteAPI = c.DeleteAPI()

	// live-listener cache (redis)
	env.Listeners = new(analytics.Listeners)
	env.Listeners.SetConnection(redisClient)

	env.UserModel.Client = mongoClient
	env.UserModel.Collection = db.Collection("users")
	env.UserModel.Social = db.Collection("social")

	// inject user model function to analytics tracker after its initialization
	env.Tracker.GetUserName = env.UserModel.GetUserName

	env.TrackModel.Client = mongoClient
	env.TrackModel.Collection = db.Collection("tracks")
	// inject functions from the user model into the track model
	env.TrackModel.GetUserName = env.UserModel.GetUserName
	env.TrackModel.CredentialsReader = env.UserModel.GetCredentials

	env.ReactionModel.Collection = db.Collection("reactions")
	env.ReactionModel.StatsCollection = db.Collection("feedbackStats")
	env.ReactionModel.GetUserName = env.UserModel.GetUserName
	env.ReactionModel.TrackExists = env.TrackModel.Exists
	// the aggregator pushes recomputed summaries into the track documents
	env.ReactionModel.SetFeedback = env.TrackModel.SetFeedback

	env.TrendingModel.Client = mongoClient
	env.TrendingModel.Collection = db.Collection("trendingTracks")
	env.TrendingModel.ReactionCollection = db.Collection("reactions")
	env.TrendingModel.TrackCollection = db.Collection("tracks")
	env.TrendingModel.StatsCollection = db.Collection("feedbackStats")

	env.ArtistModel.Client = mongoClient
	env.ArtistModel.Collection = db.Collection("artists")
	env.ArtistModel.CountFollowers = env.UserModel.CountFollowers

	env.PlaylistModel.Client = mongoClient
	env.PlaylistModel.Collection = db.Collection("playlists")
	env.PlaylistModel.GetUserName = env.UserModel.GetUserName

	return env
}

// Env is the singleton registry
var Env *Environment

// Initialize injects the database connections into the models
// (do not confuse with package init)
func Initialize() {
	Env = newEnv(database.GetConnection(), database.GetRedisConnection(), database.GetInfluxConnection())
}
