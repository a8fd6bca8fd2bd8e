package backend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultRetryInterval = 100 * time.Millisecond
)

// Gateway is the only way the coordinator reaches a backend. Every call is
// bounded by Timeout. Failures wrapping ErrUnreachable are retried up to
// MaxRetries times with exponential backoff; authentication failures are
// never retried.
type Gateway struct {
	Registry      *Registry
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

// NewGateway creates a gateway over the registry.
func NewGateway(registry *Registry, timeout time.Duration, maxRetries uint64) *Gateway {
	return &Gateway{
		Registry:      registry,
		Timeout:       timeout,
		MaxRetries:    maxRetries,
		RetryInterval: DefaultRetryInterval,
	}
}

// Authenticate verifies creds against the named backend. An unknown backend
// is reported as ErrAuthenticationFailed.
func (g *Gateway) Authenticate(ctx context.Context, name string, creds Credentials) (Principal, error) {
	b, err := g.Registry.Lookup(name)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	p, err := g.call(ctx, func(ctx context.Context) (Principal, error) {
		return b.Authenticate(ctx, creds)
	})
	if err != nil {
		return Principal{}, err
	}
	return g.applyPolicy(name, p), nil
}

// Principal re-derives the principal facts of authID from the named backend.
func (g *Gateway) Principal(ctx context.Context, name, authID string) (Principal, error) {
	b, err := g.Registry.Lookup(name)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	p, err := g.call(ctx, func(ctx context.Context) (Principal, error) {
		return b.Principal(ctx, authID)
	})
	if err != nil {
		return Principal{}, err
	}
	return g.applyPolicy(name, p), nil
}

// Names lists the backends the gateway can reach.
func (g *Gateway) Names() []string {
	return g.Registry.Names()
}

func (g *Gateway) applyPolicy(name string, p Principal) Principal {
	extra := g.Registry.Policy(name)
	if len(extra) == 0 {
		return p
	}
	acls := slices.Clone(p.ACLs)
	for _, a := range extra {
		if !slices.Contains(acls, a) {
			acls = append(acls, a)
		}
	}
	p.ACLs = acls
	return p
}

type result struct {
	p   Principal
	err error
}

func (g *Gateway) call(ctx context.Context, fn func(context.Context) (Principal, error)) (Principal, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var p Principal
	op := func() error {
		var err error
		p, err = attempt(ctx, fn)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrUnreachable) && ctx.Err() == nil:
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = g.RetryInterval
	if eb.InitialInterval <= 0 {
		eb.InitialInterval = DefaultRetryInterval
	}
	eb.MaxElapsedTime = 0 // bounded by ctx and MaxRetries

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(eb, g.MaxRetries), ctx))
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, ErrAuthenticationFailed):
		return Principal{}, err
	case ctx.Err() != nil:
		return Principal{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	default:
		return Principal{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// attempt runs fn but returns as soon as ctx is done, even if fn ignores ctx.
// Nothing has been persisted at this point so abandoning fn is safe.
func attempt(ctx context.Context, fn func(context.Context) (Principal, error)) (Principal, error) {
	ch := make(chan result, 1)
	go func() {
		p, err := fn(ctx)
		ch <- result{p: p, err: err}
	}()

	select {
	case r := <-ch:
		return r.p, r.err
	case <-ctx.Done():
		return Principal{}, ctx.Err()
	}
}
