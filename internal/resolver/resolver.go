package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/salescope/salescope/internal/query"
	"golang.org/x/sync/singleflight"
)

// Interpreter turns free text into a StructuredQuery or reports that
// it cannot. Both the local pattern matcher and the external fallback
// implement it; the resolver tries them in order.
type Interpreter interface {
	Name() string
	Interpret(ctx context.Context, text string) (*query.StructuredQuery, error)
}

const (
	cacheTTL     = 15 * time.Minute
	cacheSweep   = 30 * time.Minute
	sourceCached = "cache"
)

// Resolver owns the decision of when to invoke the fallback: the first
// interpreter in the chain is consulted directly; later (expensive)
// interpreters are fronted by a TTL cache and a singleflight group so
// concurrent identical questions share one upstream call.
type Resolver struct {
	chain []Interpreter
	cache *cache.Cache
	sf    singleflight.Group
}

// New builds a resolver over an ordered interpreter chain. At least
// one interpreter is required; a nil entry (e.g. fallback disabled by
// config) is skipped.
func New(chain ...Interpreter) *Resolver {
	var active []Interpreter
	for _, in := range chain {
		if in != nil {
			active = append(active, in)
		}
	}
	return &Resolver{
		chain: active,
		cache: cache.New(cacheTTL, cacheSweep),
	}
}

// Resolve returns the first successful interpretation along with the
// name of the interpreter that produced it. Only exhaustion of the
// whole chain surfaces ErrUnresolvable; every intermediate failure is
// logged and swallowed. There is no retry: one pass over the chain per
// call.
func (r *Resolver) Resolve(ctx context.Context, text string) (*query.StructuredQuery, string, error) {
	for i, in := range r.chain {
		var (
			q   *query.StructuredQuery
			src string
			err error
		)
		if i == 0 {
			q, err = in.Interpret(ctx, text)
			src = in.Name()
		} else {
			q, src, err = r.interpretCached(ctx, in, text)
		}
		if err == nil {
			return q, src, nil
		}

		if errors.Is(err, query.ErrNoMatch) {
			log.Debug().Str("interpreter", in.Name()).Msg("no match, trying next interpreter")
			continue
		}
		log.Warn().Err(err).Str("interpreter", in.Name()).Msg("interpreter failed")
	}
	return nil, "", query.ErrUnresolvable
}

// interpretCached fronts an expensive interpreter with the TTL cache
// and deduplicates concurrent calls for the same normalized text.
func (r *Resolver) interpretCached(ctx context.Context, in Interpreter, text string) (*query.StructuredQuery, string, error) {
	key := in.Name() + "|" + normalizeKey(text)
	if v, ok := r.cache.Get(key); ok {
		return v.(*query.StructuredQuery), sourceCached, nil
	}

	v, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if v, ok := r.cache.Get(key); ok {
			return v, nil
		}
		q, err := in.Interpret(ctx, text)
		if err != nil {
			return nil, err
		}
		r.cache.Set(key, q, cache.DefaultExpiration)
		return q, nil
	})
	if err != nil {
		return nil, "", err
	}
	return v.(*query.StructuredQuery), in.Name(), nil
}

func normalizeKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
