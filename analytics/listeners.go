package analytics

import (
	"context"
	"os"
	"sound-garage/helpers"
	"time"

	"github.com/go-redis/redis/v8"
)

// a listener is considered live while its key has not expired
const listenerTTL = 90 * time.Second

// Listeners is the cache of currently playing streams (redis).
// Each play refreshes a key per client & track with a short TTL, so counting
// the keys yields the "listening now" figure without any bookkeeping
type Listeners struct {
	redisClient *redis.Client
}

// SetConnection initializes the instance
func (l *Listeners) SetConnection(redisClient *redis.Client) {
	l.redisClient = redisClient
}

// MarkListening refreshes the live-marker of a client & track
func (l *Listeners) MarkListening(trackID string, clientKey string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	var ctx = context.Background()

	key := "live_" + trackID + "_" + clientKey

	// ToDo: log Error
	_ = l.redisClient.Set(ctx, key, time.Now().Unix(), listenerTTL).Err()
}

// CountListeners returns how many clients currently play a track
// (trackID "" counts all live streams)
func (l *Listeners) CountListeners(trackID string) (int64, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return -1, nil
	}

	mask := "live_*"
	if trackID != "" {
		mask = "live_" + trackID + "_*"
	}

	keys, err := l.getKeys(mask)
	if err != nil {
		return 0, err
	}

	return int64(len(keys)), nil
}

// get a list of keys matching a specific name
func (l *Listeners) getKeys(searchMask string) ([]string, error) {

	var ctx = context.Background()
	var cursor uint64
	var err error

	var keys []string // current iteration of cursor
	var allKeys []string

	for {
		keys, cursor, err = l.redisClient.Scan(ctx, cursor, searchMask, 10).Result()
		if err != nil {
			return nil, helpers.WrapError(err, helpers.FuncName())
		}

		allKeys = append(allKeys, keys...)

		if cursor == 0 {
			break
		}
	}
	return allKeys, nil
}
