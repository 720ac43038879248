// this package manages its own connection to redis
// (the token registry lives in a dedicated DB number, separate from the listener cache)

package authentication

import (
	"context"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
)

var client *redis.Client

// OpenConnection pools the connection to the store
func OpenConnection() error {
	var err error

	dsn := os.Getenv("CACHE_HOST") + ":" + os.Getenv("CACHE_PORT")

	dbID, err := strconv.Atoi(os.Getenv("JWT_DB"))
	if err != nil {
		return err
	}

	client = redis.NewClient(&redis.Options{
		Addr:     dsn,
		Password: os.Getenv("CACHE_PASS"),
		DB:       dbID,
	})

	var ctx = context.Background()
	_, err = client.Ping(ctx).Result()
	if err != nil {
		return err
	}

	return nil
}

// CloseConnection closes the connection to the store
func CloseConnection() error {
	return client.Close()
}
