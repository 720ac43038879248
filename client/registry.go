package client

import (
	"sync"
	"time"
)

type request struct {
	TrackID  string
	Accessed time.Time
}

// https://blog.golang.org/maps
// mediate access to the requests-map using mutex
// this is needed because the map is maintained by a GO-routine
var registry = struct {
	sync.RWMutex
	requests map[string]request // key is IP or session ID
}{}

type Registry struct {
}

func (r Registry) Initialize() {
	registry.requests = make(map[string]request)
}

// Continue reports whether a play request should count towards the play
// statistics. The combination of client & track found again means the client
// merely refreshed or re-buffered the same stream.
func (r Registry) Continue(client string, trackID string) bool {

	registry.RLock()
	found := !(registry.requests[client].TrackID == trackID)
	registry.RUnlock()

	// add or update the last (relevant) request
	req := request{
		TrackID:  trackID,
		Accessed: time.Now(),
	}

	registry.Lock()
	registry.requests[client] = req
	registry.Unlock()

	return found
}

// Flush removes requests from the registry which are older than 15 minutes
// usually called by a GO-routine that runs in a ticker
func (r Registry) Flush() {

	registry.Lock()
	now := time.Now()
	if len(registry.requests) > 5000 {
		// it's safe to just delete expired keys, since iterations over maps are not ordered
		for key, value := range registry.requests {
			// remove if last access was 15 mins ago
			if now.Sub(value.Accessed).Minutes() > 15 {
				delete(registry.requests, key)
			}
		}
	}
	registry.Unlock()
}

// Count returns how many different clients are currently active
func (r Registry) Count() int {
	registry.RLock()
	cnt := len(registry.requests)
	registry.RUnlock()
	return cnt
}

// Dump returns the last accessed track and timestamp for each client
func (r Registry) Dump(max int) []request {

	var res []request
	var req request
	i := 0

	registry.RLock()
	for _, v := range registry.requests {
		if i >= max {
			break
		}

		req.TrackID = v.TrackID
		req.Accessed = v.Accessed

		res = append(res, req)
		i++
	}
	registry.RUnlock()

	return res
}
