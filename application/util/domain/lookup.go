// Package domain resolves host names to addresses.
package domain

import (
	"context"
	"maps"
	"net"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

var ErrDomainNotFound = errors.New("domain not found")

// Lookuper resolves host to a list of IP addresses in textual form.
// IP literals resolve to themselves.
type Lookuper interface {
	LookupHost(ctx context.Context, host string) (addrs []string, err error)
}

type mapLookuper struct {
	mu  sync.RWMutex
	set map[string][]string
}

var _ Lookuper = (*mapLookuper)(nil)

// NewMapLookuper creates a static lookuper. set is copied.
func NewMapLookuper(set map[string][]string) *mapLookuper {
	m := &mapLookuper{set: make(map[string][]string, len(set))}
	for domain, addrs := range maps.All(set) {
		m.set[domain] = slices.Clone(addrs)
	}
	return m
}

func (m *mapLookuper) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	addrs, ok := m.set[host]
	if !ok {
		return nil, errors.Wrap(ErrDomainNotFound, host)
	}
	return slices.Clone(addrs), nil
}

func (m *mapLookuper) Set(domain string, addrs ...string) {
	if len(addrs) == 0 {
		return
	}
	m.mu.Lock()
	m.set[domain] = addrs
	m.mu.Unlock()
}

func (m *mapLookuper) Del(domain string) {
	m.mu.Lock()
	delete(m.set, domain)
	m.mu.Unlock()
}

// resolverLookuper asks the system resolver.
type resolverLookuper struct {
	r *net.Resolver
}

var _ Lookuper = (*resolverLookuper)(nil)

// NewResolverLookuper wraps r. A nil r means [net.DefaultResolver].
func NewResolverLookuper(r *net.Resolver) *resolverLookuper {
	if r == nil {
		r = net.DefaultResolver
	}
	return &resolverLookuper{r: r}
}

func (l *resolverLookuper) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}, nil
	}

	addrs, err := l.r.LookupHost(ctx, host)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, errors.Wrap(ErrDomainNotFound, host)
		}
		return nil, errors.Wrap(err, "looking up host")
	}
	return addrs, nil
}

type chainLookuper []Lookuper

// Chain asks each lookuper in order. [ErrDomainNotFound] moves on to the
// next one, other errors stop the chain.
func Chain(lookupers ...Lookuper) Lookuper { return chainLookuper(lookupers) }

func (c chainLookuper) LookupHost(ctx context.Context, host string) ([]string, error) {
	for _, l := range c {
		addrs, err := l.LookupHost(ctx, host)
		if errors.Is(err, ErrDomainNotFound) {
			continue
		}
		return addrs, err
	}
	return nil, errors.Wrap(ErrDomainNotFound, host)
}
