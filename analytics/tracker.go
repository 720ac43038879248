package analytics

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sound-garage/client"
	"sound-garage/database"
	"sound-garage/helpers"
	"sound-garage/models"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Tracker collects play and search events in the analytics cache (influxDB)
// and periodically replicates aggregates into the database (Mongo)
type Tracker struct {
	influxClient influxdb2.Client
	PlayAPI      database.InfluxAPI
	SearchAPI    database.InfluxAPI
	collections  map[string]*mongo.Collection
	GetUserName  func(ID string) (string, error)
	Requests     *client.Registry
}

// Play is one listening event, sent to clients of the stats endpoints
type Play struct {
	PlayTS   time.Time `json:"playTS"`
	TrackID  string    `json:"trackID"`
	UserID   string    `json:"userID"`
	UserName string    `json:"userName"`
}

// SetConnections initializes the instance
func (t *Tracker) SetConnections(influxClient *influxdb2.Client, mongoCollections map[string]*mongo.Collection) {
	t.influxClient = *influxClient
	t.collections = mongoCollections
}

// SavePlay stores a listening event in the analytics cache.
// The requests registry filters page refreshes and re-buffering, so one
// client session counts a stream once
func (t *Tracker) SavePlay(trackID string, userID string, clientKey string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// refreshes of the same stream don't count
	if !t.Requests.Continue(clientKey, trackID) {
		return
	}

	// include object type (domain) in key name,
	// so this information can be "wrapped" in aggregation queries

	// the risk of high series cardinality is accepted, since tracks is what we're interested in
	// https://docs.influxdata.com/influxdb/v2.0/write-data/best-practices/resolve-high-cardinality/

	p := influxdb2.NewPoint(
		"play",
		map[string]string{"trackId": "track_" + trackID},
		map[string]interface{}{"userId": userID},
		time.Now())

	// ToDo: log Error
	t.PlayAPI.WriteAPI.WritePoint(context.Background(), p)
}

// SaveSearch stores the search terms that led to track listings
func (t *Tracker) SaveSearch(search *models.TrackSearch, results []models.TrackListItem) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// do not log any empty search
	if search.SearchTerm == "" {
		return
	}

	ts := time.Now()

	for _, v := range results {
		fields := map[string]interface{}{
			"domain": "track",
			"genre":  search.GenreText,
			"term":   search.SearchTerm}

		p := influxdb2.NewPoint(
			"search", // measurement
			map[string]string{"trackId": v.ID.Hex()}, // tag
			fields,
			ts)

		// ToDo: log Error
		t.SearchAPI.WriteAPI.WritePoint(context.Background(), p)
	}
}

// GetPlays counts the number of plays of a track
// the value is "live" - meaning it's read from the analytics cache (influxDB)
// which is set to a maximum period (TTL) of 30 days
// creators and admins may receive the total counts which is added by the MongoDB information
func (t *Tracker) GetPlays(trackID string, startDT time.Time) (int64, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return -1, nil
	}

	flux := `from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "play" and r["trackId"] == "%s")
		|> count()
		|> yield(name: "count")`

	id := "track_" + trackID
	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_PLAYS_BUCKET"),
		startDT.Format(time.RFC3339),
		id)

	result, err := t.PlayAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// just 1 record
	var res interface{}
	for result.Next() {
		res = result.Record().Value()
	}

	var cnt int64 = 0
	if res != nil {
		cnt = res.(int64)
	}

	return cnt, nil
}

// ListListeners returns the last listeners of a track (only the most recent
// play per user) - shown to creators and admins
func (t *Tracker) ListListeners(trackID string, startDT time.Time) ([]Play, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return nil, nil
	}

	flux := `import "strings"
		from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "play" and strings.containsStr(substr: "%s", v: r.trackId))
		|> group(columns: ["_value"], mode:"by")
		|> max(column: "_time")
		|> sort(columns: ["_time"], desc: true)
		|> limit(n:10, offset: 0)`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_PLAYS_BUCKET"),
		startDT.Format(time.RFC3339), // 2021-04-01T00:00:00Z
		trackID)

	result, err := t.PlayAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var play Play
	var plays []Play
	for result.Next() {
		play.PlayTS = result.Record().Time()
		play.TrackID = trackID
		if result.Record().Value() == nil {
			play.UserID = ""
			play.UserName = ""
		} else {
			play.UserID = result.Record().Value().(string)
			play.UserName, _ = t.GetUserName(play.UserID)
		}

		plays = append(plays, play)
	}

	// the flux query is sorted, the received slice is not
	sort.Slice(plays, func(i, j int) bool {
		return plays[j].PlayTS.Before(plays[i].PlayTS)
	})

	return plays, nil
}

// Replicate moves the play counts from the cache (InfluxDB) into the database (Mongo)
// usually called by a GO-routine that runs in a ticker
func (t *Tracker) Replicate() {

	ctx := context.Background()
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.Now().UTC().Location()) // just start somewhere as the minimum date
	stop := time.Now().AddDate(0, -1, 0)                                    // move everything older than one month

	// 1. get counts from influxDB
	flux := `from(bucket: "%s")
	|> range(start: %s, stop: %s) // use pre-calculated stop because delete-api needs time
	|> filter(fn: (r) => r["_measurement"] == "play")
	|> count()
	|> yield(name: "count")`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_PLAYS_BUCKET"),
		start.Format(time.RFC3339),
		stop.Format(time.RFC3339))

	result, err := t.PlayAPI.QueryAPI.Query(ctx, flux)
	if err != nil {
		// ToDO: Log Error
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
		return
	}

	// 2. save counts to MongoDB (bulk)
	// https://pkg.go.dev/go.mongodb.org/mongo-driver/mongo#Collection.BulkWrite

	// create a write model for each collection
	opModels := make(map[string][]mongo.WriteModel)

	var strs []string // used to "extract" object type from key
	for result.Next() {
		// create a document and a write model for each record

		strs = strings.Split(result.Record().ValueByKey("trackId").(string), "_")

		operation := bson.D{
			{Key: "$inc", Value: bson.D{
				{Key: "metaInfo.plays", Value: result.Record().Value()}, // value of the projection function (count)
			}},
		}

		opModel := mongo.NewUpdateOneModel()
		opModel.SetFilter(bson.D{{Key: "_id", Value: helpers.ObjectID(strs[1])}}).SetUpdate(operation)

		// map the object types (domains) from influxDB to collections of mongoDB
		switch strs[0] {
		case "track":
			opModels["tracks"] = append(opModels["tracks"], opModel)
		default:
			// ToDo: Log
			fmt.Println("ERROR: repl not correctly implemented")
		}
	}

	// len returns int, mongoDB's matchCount int64
	// to avoid all the conversions, two variables are used for actually the same thing
	var i int = 0
	for _, v := range opModels {
		i += len(v)
	}

	// abort if no data to process
	if i == 0 {
		// ToDO: Log
		fmt.Printf("%v: %v track's play(s) replicated.\n", time.Now().Format(time.RFC3339), 0)
		return
	}

	opts := options.BulkWrite().SetOrdered(false)

	var cnt int64 = 0 // total replicated plays

	// process each collection's write models (= update operations)
	for k, v := range opModels {
		if v != nil {
			res, err := t.collections[k].BulkWrite(ctx, v, opts)
			if err != nil {
				// ToDO: Log Error
				fmt.Println(helpers.WrapError(err, helpers.FuncName()))
				continue
			}
			cnt += res.MatchedCount
		}
	}

	// ToDo: could be logged
	fmt.Printf("%v: %v track's play(s) replicated.\n", time.Now().Format(time.RFC3339), cnt)

	// 3. delete transferred data from influxDB
	err = t.PlayAPI.DeleteAPI.DeleteWithName(ctx, os.Getenv("ANALYTICS_ORG"), os.Getenv("ANALYTICS_PLAYS_BUCKET"), start, stop, "")
	if err != nil {
		// ToDo: Log "real" (severe) error
		fmt.Println("ERROR: could not delete data in influxDB that was already written to MongoDB => duplicated/high values")
		return
	}
}
