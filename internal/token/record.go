// Package token acquires a ProjectWise bearer token from an interactive
// browser login and persists it for the server to pick up.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
)

// DefaultTokenType is used when the stored credential does not name one.
const DefaultTokenType = "Bearer"

// rawJWTPrefix marks a bare base64url-encoded JWT header ({"...).
const rawJWTPrefix = "eyJ"

// Record is the persisted token artifact. It is written once per login run.
type Record struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   *int64 `json:"expires_at"`
	FetchedAt   int64  `json:"fetched_at"`
	SourceKey   string `json:"source_key"`
}

// Expired reports whether the token has a known expiry at or before now.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && *r.ExpiresAt <= now.Unix()
}

// Expiry returns the expiry as a time, or false when unknown.
func (r *Record) Expiry() (time.Time, bool) {
	if r.ExpiresAt == nil {
		return time.Time{}, false
	}
	return time.Unix(*r.ExpiresAt, 0), true
}

// ParseStorageValue extracts a token record from a session-storage value.
// The value is normally an OIDC user object; a bare JWT is accepted too.
// It returns false while the credential is not (yet) usable. Fields other
// than access_token are read leniently: a malformed expires_at means unknown.
func ParseStorageValue(raw, key string, now time.Time) (*Record, bool) {
	if raw == "" {
		return nil, false
	}

	if !gjson.Valid(raw) {
		if strings.HasPrefix(raw, rawJWTPrefix) {
			return &Record{
				AccessToken: raw,
				TokenType:   DefaultTokenType,
				ExpiresAt:   jwtExpiry(raw),
				FetchedAt:   now.Unix(),
				SourceKey:   key,
			}, true
		}
		return nil, false
	}

	user := gjson.Parse(raw)
	if !user.IsObject() {
		return nil, false
	}
	access := user.Get("access_token")
	if access.Type != gjson.String || access.Str == "" {
		return nil, false
	}

	rec := &Record{
		AccessToken: access.Str,
		TokenType:   DefaultTokenType,
		ExpiresAt:   unixSeconds(user.Get("expires_at")),
		FetchedAt:   now.Unix(),
		SourceKey:   key,
	}
	if tt := user.Get("token_type"); tt.Type == gjson.String && tt.Str != "" {
		rec.TokenType = tt.Str
	}
	return rec, true
}

// unixSeconds reads a numeric epoch; anything else, and zero, means unknown.
func unixSeconds(v gjson.Result) *int64 {
	if v.Type != gjson.Number {
		return nil
	}
	n := int64(v.Num)
	if n == 0 {
		return nil
	}
	return &n
}

// jwtExpiry reads the exp claim without verifying the signature. The token is
// only inspected locally; the WSG server does the real validation.
func jwtExpiry(tok string) *int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	v := exp.Unix()
	return &v
}

// Claims decodes the access token's claims without verification. Tokens that
// are not JWTs return an error.
func (r *Record) Claims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(r.AccessToken, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
