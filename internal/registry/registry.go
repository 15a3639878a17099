package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rproc-labs/rproc/internal/rscript"
)

// Sentinel errors returned by the registry.
var (
	ErrDuplicateProvider = errors.New("provider already registered")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrUnknownAlgorithm  = errors.New("unknown algorithm")
)

// Provider is an algorithm provider as seen by the host.
type Provider interface {
	ID() string
	Name() string
	InitializeSettings()
	Unload()
	LoadAlgorithms()
	Algorithms() []*rscript.Algorithm
}

// ReloadFunc is called after a provider has (re)loaded its algorithms.
type ReloadFunc func(p Provider)

// Registry holds the registered providers in registration order.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	onReload  []ReloadFunc
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// OnReload adds fn to the functions called after every load.
func (r *Registry) OnReload(fn ReloadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReload = append(r.onReload, fn)
}

// Register initializes the provider's settings and loads its algorithms.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	if _, ok := r.providers[p.ID()]; ok {
		r.mu.Unlock()
		return fmt.Errorf("registering %q: %w", p.ID(), ErrDuplicateProvider)
	}
	r.providers[p.ID()] = p
	r.order = append(r.order, p.ID())
	r.mu.Unlock()

	p.InitializeSettings()
	p.LoadAlgorithms()
	r.notify(p)
	return nil
}

// Deregister unloads the provider and removes it from the registry.
func (r *Registry) Deregister(id string) error {
	r.mu.Lock()
	p, ok := r.providers[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("deregistering %q: %w", id, ErrUnknownProvider)
	}
	delete(r.providers, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	p.Unload()
	return nil
}

// Reload re-runs discovery for the provider id.
func (r *Registry) Reload(id string) error {
	p, err := r.Provider(id)
	if err != nil {
		return fmt.Errorf("reloading: %w", err)
	}
	p.LoadAlgorithms()
	r.notify(p)
	return nil
}

// Provider returns the provider registered under id.
func (r *Registry) Provider(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownProvider)
	}
	return p, nil
}

// Providers returns the registered providers in registration order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id])
	}
	return out
}

// Algorithm looks an algorithm up by its "<provider>:<name>" id. The name
// part is compared against each algorithm's command line name, so
// "r:Buffer zone" and "r:bufferzone" both match.
func (r *Registry) Algorithm(id string) (*rscript.Algorithm, Provider, error) {
	providerID, name, ok := strings.Cut(id, ":")
	if !ok {
		return nil, nil, fmt.Errorf("algorithm %q: id must look like <provider>:<name>: %w", id, ErrUnknownAlgorithm)
	}
	p, err := r.Provider(providerID)
	if err != nil {
		return nil, nil, fmt.Errorf("algorithm %q: %w", id, err)
	}
	want := (&rscript.Algorithm{Name: name}).CommandLineName()
	for _, alg := range p.Algorithms() {
		if alg.CommandLineName() == want {
			return alg, p, nil
		}
	}
	return nil, p, fmt.Errorf("algorithm %q: %w", id, ErrUnknownAlgorithm)
}

// Algorithms returns every algorithm of every provider.
func (r *Registry) Algorithms() []*rscript.Algorithm {
	var out []*rscript.Algorithm
	for _, p := range r.Providers() {
		out = append(out, p.Algorithms()...)
	}
	return out
}

func (r *Registry) notify(p Provider) {
	r.mu.RLock()
	fns := append([]ReloadFunc(nil), r.onReload...)
	r.mu.RUnlock()
	for _, fn := range fns {
		fn(p)
	}
}
