// Package session holds generated trips in a short-lived in-memory store
// keyed by an opaque token. Nothing is persisted beyond the session TTL.
package session

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

type Trip struct {
	Token           string    `json:"token"`
	Origin          string    `json:"origin"`
	Destinations    []string  `json:"destinations"`
	DestinationDays []int     `json:"destinationDays,omitempty"`
	DateFrom        string    `json:"dateFrom"`
	DateTo          string    `json:"dateTo"`
	Travelers       int       `json:"travelers"`
	Children        int       `json:"children"`
	Rooms           int       `json:"rooms"`
	Currency        string    `json:"currency"`
	ItineraryJSON   string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}

var ErrNotFound = fmt.Errorf("trip session not found or expired")

var store *cache.Cache

// Init creates the store. SESSION_TTL_MINUTES overrides the default 2 hour
// lifetime; expired entries are swept every 10 minutes.
func Init() {
	ttl := 2 * time.Hour
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil && mins > 0 {
			ttl = time.Duration(mins) * time.Minute
		}
	}
	store = cache.New(ttl, 10*time.Minute)
	log.Printf("✅ Trip session store ready (TTL %s)", ttl)
}

// Save mints an opaque token for the trip and stores it for the session TTL.
func Save(t *Trip) string {
	t.Token = uuid.New().String()
	t.CreatedAt = time.Now()
	store.SetDefault(t.Token, t)
	return t.Token
}

func Get(token string) (*Trip, error) {
	v, ok := store.Get(token)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Trip), nil
}

func Delete(token string) {
	store.Delete(token)
}
