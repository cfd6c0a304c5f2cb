package token

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Storage areas a Session can enumerate.
const (
	AreaLocal   = "localStorage"
	AreaSession = "sessionStorage"
)

// StorageEntry is one key of a page's web storage.
type StorageEntry struct {
	Area  string `json:"area"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Candidate is a storage key that may hold the OIDC credential.
type Candidate struct {
	Area        string `json:"area"`
	Key         string `json:"key"`
	AccessToken bool   `json:"access_token"`
	IDToken     bool   `json:"id_token"`
	ExpiresAt   *int64 `json:"expires_at"`
}

// candidateMarkers are the substrings oidc-client style libraries put in their keys.
var candidateMarkers = []string{"oidc", "token", "user", "auth"}

func isCandidateKey(key string) bool {
	for _, m := range candidateMarkers {
		if strings.Contains(key, m) {
			return true
		}
	}
	return false
}

// Candidates filters entries down to likely credential keys and reports what
// each one holds. Keys that yield an access token sort first; otherwise the
// session order is kept.
func Candidates(entries []StorageEntry, now time.Time) []Candidate {
	var withToken, rest []Candidate
	for _, e := range entries {
		if !isCandidateKey(e.Key) {
			continue
		}
		c := Candidate{Area: e.Area, Key: e.Key}
		if rec, ok := ParseStorageValue(e.Value, e.Key, now); ok {
			c.AccessToken = true
			c.ExpiresAt = rec.ExpiresAt
		}
		if gjson.Valid(e.Value) {
			id := gjson.Get(e.Value, "id_token")
			c.IDToken = id.Type == gjson.String && id.Str != ""
		}
		if c.AccessToken {
			withToken = append(withToken, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(withToken, rest...)
}

// Discover lists the candidate credential keys of an open session.
func Discover(ctx context.Context, sess Session, now time.Time) ([]Candidate, error) {
	entries, err := sess.ListStorage(ctx)
	if err != nil {
		return nil, err
	}
	return Candidates(entries, now), nil
}
