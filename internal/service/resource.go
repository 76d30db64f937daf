package service

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/config"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/logger"
	"github.com/bookworm/bookworm-web/internal/model"
)

// cachedEnvelope is what a cached GET stores: the data exactly as the API sent it.
type cachedEnvelope struct {
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

// resource is the API + cache plumbing every service embeds. Queries are cached
// under tags; mutations invalidate them.
type resource struct {
	api   *apiclient.Client
	cache cache.Store
	ttl   time.Duration
	log   zerolog.Logger
}

func newResource(api *apiclient.Client, store cache.Store, ttl time.Duration, log zerolog.Logger, component string) resource {
	if store == nil {
		store = cache.Nop{}
	}
	return resource{
		api:   api,
		cache: store,
		ttl:   ttl,
		log:   logger.Component(log, component),
	}
}

// query fetches path through the cache. scope is config.ScopeShared (or empty) or
// config.ScopeAdmin; per-user reads go through queryUser.
func (r *resource) query(ctx context.Context, scope, path string, q url.Values, dst any, tags ...string) (*model.Pagination, error) {
	key := config.CacheKey.ResponseKey(scope, path, q)

	var cached cachedEnvelope
	hit, err := r.cache.Get(ctx, key, &cached)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to API")
	}
	if hit {
		env := &apiclient.Envelope{Data: cached.Data, Pagination: cached.Pagination}
		if err := env.Decode(dst); err == nil {
			return env.Pagination, nil
		}
		r.log.Warn().Str("key", key).Msg("cached entry undecodable, refetching")
	}

	// Stamped before the fetch: a mutation invalidating these tags while the
	// request is in flight makes the write below a no-op.
	stamp, stampErr := r.cache.Stamp(ctx, tags...)
	if stampErr != nil {
		r.log.Warn().Err(stampErr).Str("key", key).Msg("cache stamp failed, not caching")
	}

	env, err := r.fetch(ctx, path, q, dst)
	if err != nil {
		return nil, err
	}

	if stampErr == nil {
		stored, err := r.cache.SetIfUnchanged(ctx, stamp, key, cachedEnvelope{Data: env.Data, Pagination: env.Pagination}, r.ttl)
		if err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		} else if !stored {
			r.log.Debug().Str("key", key).Msg("invalidated during fetch, not cached")
		}
	}
	return env.Pagination, nil
}

// queryUser is query for data owned by sess. A session without a subject cannot
// be told apart from any other, so its reads bypass the cache.
func (r *resource) queryUser(ctx context.Context, sess *gate.Session, path string, q url.Values, dst any, tags ...string) (*model.Pagination, error) {
	if sess.Subject == "" {
		env, err := r.fetch(ctx, path, q, dst)
		if err != nil {
			return nil, err
		}
		return env.Pagination, nil
	}
	tags = append(tags, config.CacheKey.UserTag(sess.Subject))
	return r.query(ctx, config.CacheKey.UserScope(sess.Subject), path, q, dst, tags...)
}

func (r *resource) fetch(ctx context.Context, path string, q url.Values, dst any) (*apiclient.Envelope, error) {
	env, err := r.api.Get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	if err := env.Decode(dst); err != nil {
		return nil, err
	}
	return env, nil
}

// userTags returns tags plus the owner's tag when sess has a subject.
func userTags(sess *gate.Session, tags ...string) []string {
	if sess.Subject != "" {
		tags = append(tags, config.CacheKey.UserTag(sess.Subject))
	}
	return tags
}

// mutate sends a write and invalidates tags once it succeeded. dst may be nil.
func (r *resource) mutate(ctx context.Context, method, path string, body, dst any, tags ...string) error {
	env, err := r.api.Do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	r.invalidate(ctx, tags...)
	if dst != nil {
		return env.Decode(dst)
	}
	return nil
}

func (r *resource) invalidate(ctx context.Context, tags ...string) {
	if len(tags) == 0 {
		return
	}
	if err := r.cache.Invalidate(ctx, tags...); err != nil {
		r.log.Warn().Err(err).Strs("tags", tags).Msg("cache invalidation failed")
	}
}

func itemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}
