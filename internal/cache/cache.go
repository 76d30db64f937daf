// Package cache stores backend responses under invalidation tags, so a mutation
// of a resource drops every cached page that showed it.
package cache

import (
	"context"
	"time"
)

// Tags used by the services.
const (
	TagBooks     = "Books"
	TagGenres    = "Genres"
	TagReviews   = "Reviews"
	TagTutorials = "Tutorials"
	TagLibrary   = "Library"
	TagUsers     = "Users"
	TagStats     = "Stats"
)

// Store is a tagged response cache.
type Store interface {
	// Get decodes the value under key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores value under key for ttl and registers key with every tag.
	Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error
	// Invalidate removes every key registered under any of tags.
	Invalidate(ctx context.Context, tags ...string) error
	// Stamp captures how often each tag has been invalidated so far.
	Stamp(ctx context.Context, tags ...string) (Stamp, error)
	// SetIfUnchanged is Set, skipped when any stamped tag was invalidated after
	// the stamp was taken. It reports whether the value was stored.
	SetIfUnchanged(ctx context.Context, stamp Stamp, key string, value any, ttl time.Duration) (bool, error)
}

// Stamp is the invalidation state of a tag list at one point in time.
type Stamp struct {
	Tags     []string
	versions []string
}

// Nop is a Store that never holds anything. Used when Redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error)                  { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration, ...string) error { return nil }
func (Nop) Invalidate(context.Context, ...string) error                     { return nil }

func (Nop) Stamp(_ context.Context, tags ...string) (Stamp, error) { return Stamp{Tags: tags}, nil }

func (Nop) SetIfUnchanged(context.Context, Stamp, string, any, time.Duration) (bool, error) {
	return false, nil
}
