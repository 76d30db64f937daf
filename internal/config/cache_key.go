package config

import (
	"fmt"
	"net/url"
)

// Response scopes. Per-user entries use UserScope and never share a prefix with these.
const (
	ScopeShared = "shared"
	ScopeAdmin  = "admin"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ResponseKey returns the cache key for a backend GET response.
// scope is ScopeShared (the default when empty), ScopeAdmin, or a UserScope.
func (r *CacheKeyStruct) ResponseKey(scope, path string, query url.Values) string {
	if scope == "" {
		scope = ScopeShared
	}
	if len(query) == 0 {
		return fmt.Sprintf("bw:resp:%s:%s", scope, path)
	}
	return fmt.Sprintf("bw:resp:%s:%s?%s", scope, path, query.Encode())
}

// UserScope is the response scope of a single user. The subject is escaped so it
// cannot reach into the path part of the key.
func (r *CacheKeyStruct) UserScope(subject string) string {
	return "user:" + url.QueryEscape(subject)
}

// TagKey returns the key of the set holding every response key cached under tag.
func (r *CacheKeyStruct) TagKey(tag string) string {
	return fmt.Sprintf("bw:tag:%s", tag)
}

// TagVersionKey returns the key counting how often tag has been invalidated.
func (r *CacheKeyStruct) TagVersionKey(tag string) string {
	return fmt.Sprintf("bw:tagver:%s", tag)
}

// UserTag returns the tag grouping every cached response owned by a single user.
func (r *CacheKeyStruct) UserTag(subject string) string {
	return fmt.Sprintf("User:%s", subject)
}

var CacheKey = NewCacheKeyStruct()
