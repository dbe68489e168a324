package cache

import (
	"time"

	"github.com/linked-planet/go-http-client/pkg/httpclient"
)

// Entry represents a cached REST response.
type Entry struct {
	StatusCode int `json:"status_code"`

	Body string `json:"body"`

	// CachedAt is when we cached this response
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale
	Expires time.Time `json:"expires"`
}

// NewEntry creates an entry for resp that expires after ttl.
func NewEntry(resp httpclient.HTTPResponse[string], ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		CachedAt:   now,
		Expires:    now.Add(ttl),
	}
}

// Response converts the entry back into the response it was created from.
func (e *Entry) Response() httpclient.HTTPResponse[string] {
	return httpclient.HTTPResponse[string]{StatusCode: e.StatusCode, Body: e.Body}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
