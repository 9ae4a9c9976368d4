package resolver_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/salescope/salescope/internal/query"
	"github.com/salescope/salescope/internal/resolver"
)

type fakeInterpreter struct {
	name  string
	q     *query.StructuredQuery
	err   error
	mu    sync.Mutex
	calls int
}

func (f *fakeInterpreter) Name() string { return f.name }

func (f *fakeInterpreter) Interpret(_ context.Context, _ string) (*query.StructuredQuery, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.q, f.err
}

func sumQuery() *query.StructuredQuery {
	return &query.StructuredQuery{Aggregation: query.AggSum}
}

func TestLocalHitSkipsFallback(t *testing.T) {
	local := &fakeInterpreter{name: "local", q: sumQuery()}
	fallback := &fakeInterpreter{name: "fallback", q: sumQuery()}

	q, source, err := resolver.New(local, fallback).Resolve(context.Background(), "total sales")
	if err != nil {
		t.Fatal(err)
	}
	if q == nil || source != "local" {
		t.Errorf("source = %q, want local", source)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestNoMatchInvokesFallback(t *testing.T) {
	local := &fakeInterpreter{name: "local", err: query.ErrNoMatch}
	fallback := &fakeInterpreter{name: "fallback", q: sumQuery()}

	q, source, err := resolver.New(local, fallback).Resolve(context.Background(), "gibberish one")
	if err != nil {
		t.Fatal(err)
	}
	if q == nil || source != "fallback" {
		t.Errorf("source = %q, want fallback", source)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback called %d times, want 1", fallback.calls)
	}
}

func TestAllFailedIsUnresolvable(t *testing.T) {
	local := &fakeInterpreter{name: "local", err: query.ErrNoMatch}
	fallback := &fakeInterpreter{name: "fallback", err: query.ErrExternalService}

	_, _, err := resolver.New(local, fallback).Resolve(context.Background(), "gibberish two")
	if !errors.Is(err, query.ErrUnresolvable) {
		t.Errorf("error = %v, want ErrUnresolvable", err)
	}
}

func TestFallbackResultIsCached(t *testing.T) {
	local := &fakeInterpreter{name: "local", err: query.ErrNoMatch}
	fallback := &fakeInterpreter{name: "fallback", q: sumQuery()}
	r := resolver.New(local, fallback)

	if _, source, err := r.Resolve(context.Background(), "Weird Query"); err != nil || source != "fallback" {
		t.Fatalf("first resolve: source=%q err=%v", source, err)
	}
	// Same text modulo case and whitespace hits the cache.
	_, source, err := r.Resolve(context.Background(), "  weird   query ")
	if err != nil {
		t.Fatal(err)
	}
	if source != "cache" {
		t.Errorf("source = %q, want cache", source)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback called %d times, want 1", fallback.calls)
	}
}

func TestFallbackFailureIsNotCached(t *testing.T) {
	local := &fakeInterpreter{name: "local", err: query.ErrNoMatch}
	fallback := &fakeInterpreter{name: "fallback", err: query.ErrExternalService}
	r := resolver.New(local, fallback)

	r.Resolve(context.Background(), "still gibberish")
	r.Resolve(context.Background(), "still gibberish")
	if fallback.calls != 2 {
		t.Errorf("fallback called %d times, want 2 (failures must not be cached)", fallback.calls)
	}
}

func TestNilInterpretersAreSkipped(t *testing.T) {
	local := &fakeInterpreter{name: "local", err: query.ErrNoMatch}

	_, _, err := resolver.New(local, nil).Resolve(context.Background(), "anything")
	if !errors.Is(err, query.ErrUnresolvable) {
		t.Errorf("error = %v, want ErrUnresolvable", err)
	}
}
