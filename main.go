package main

import (
	"fmt"
	"log"
	"time"

	"sound-garage/authentication"
	"sound-garage/database"
	"sound-garage/environment"
	"sound-garage/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	router = gin.Default()
)

// called BEFORE main - note that the order of package inits is undefined!
func init() {
	// Load Config
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

// background jobs: trending recomputes, analytics replication and registry housekeeping
func startJobs() {

	// the short window is recomputed often, the long ones once in a while
	go func() {
		fast := time.NewTicker(5 * time.Minute)
		slow := time.NewTicker(1 * time.Hour)
		for {
			select {
			case <-fast.C:
				computeTrending(models.Timeframe1h, models.Timeframe24h)
			case <-slow.C:
				computeTrending(models.Timeframe7d, models.Timeframe30d)
				environment.Env.Tracker.Replicate()
				environment.Env.Requests.Flush()
			}
		}
	}()
}

func computeTrending(timeframes ...string) {
	for _, timeframe := range timeframes {
		processed, err := environment.Env.TrendingModel.ComputeTrending(timeframe)
		if err != nil {
			fmt.Printf("trending %s: %v\n", timeframe, err)
			continue
		}
		fmt.Printf("trending %s: %d tracks processed\n", timeframe, processed)
	}
}

func main() {
	// Connect to main database here (mongoDB)
	err := database.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseConnection()

	// connect to JWT Store (redis)
	err = authentication.OpenConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer authentication.CloseConnection()

	// connect to listener cache (redis)
	err = database.OpenRedisConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseRedisConnection()

	// connect to Analysis-DB (influxDB)
	err = database.OpenInfluxConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseInfluxConnection()

	// Initialize the Models
	environment.Initialize()

	startJobs()

	fmt.Println("Sound-Garage running...")
	handleRequests()
}
