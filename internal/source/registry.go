// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

// ErrUnknownPlatform is returned when a request names a platform the binary
// does not know.
var ErrUnknownPlatform = errors.New("unknown platform")

// Registry is the closed, ordered set of adapters built at startup.
// Registration order is the merge order of every search.
type Registry struct {
	adapters []Adapter
	index    map[types.Platform]int
}

// NewRegistry registers adapters in the given order. Registering two
// adapters for one platform is an error.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{index: make(map[types.Platform]int, len(adapters))}
	for _, a := range adapters {
		p := a.Platform()
		if _, dup := r.index[p]; dup {
			return nil, fmt.Errorf("platform %q registered twice", p)
		}
		r.index[p] = len(r.adapters)
		r.adapters = append(r.adapters, a)
	}
	return r, nil
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int { return len(r.adapters) }

// Adapters returns every adapter in registration order.
func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Platforms returns the registered platforms in registration order.
func (r *Registry) Platforms() []types.Platform {
	out := make([]types.Platform, len(r.adapters))
	for i, a := range r.adapters {
		out[i] = a.Platform()
	}
	return out
}

// Resolve maps request platform names to adapters, in registration order.
// Empty names or any "All" select every adapter. Known platforms that are
// not registered (for example, missing credentials) are returned in
// unavailable; unknown names fail with ErrUnknownPlatform.
func (r *Registry) Resolve(names []string) (active []Adapter, unavailable []types.Platform, err error) {
	if len(names) == 0 {
		return r.Adapters(), nil, nil
	}

	wanted := make(map[types.Platform]bool, len(names))
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), types.PlatformAll) {
			return r.Adapters(), nil, nil
		}
		p, err := types.ParsePlatform(name)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
		}
		wanted[p] = true
	}

	for _, a := range r.adapters {
		if wanted[a.Platform()] {
			active = append(active, a)
		}
	}
	for _, p := range types.KnownPlatforms {
		if _, registered := r.index[p]; wanted[p] && !registered {
			unavailable = append(unavailable, p)
		}
	}
	return active, unavailable, nil
}
