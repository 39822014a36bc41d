package feature

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
)

const (
	CosmoCats     = "cosmoCats"
	KittyProducts = "kittyProducts"
)

// Gate holds named on/off switches. Only names registered at construction
// exist; everything else is inert.
type Gate struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func NewGate(defaults map[string]bool) *Gate {
	flags := make(map[string]bool, len(defaults))
	for name, on := range defaults {
		flags[name] = on
	}
	return &Gate{flags: flags}
}

func (g *Gate) Check(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.flags[name]
}

func (g *Gate) Enable(name string) bool  { return g.set(name, true) }
func (g *Gate) Disable(name string) bool { return g.set(name, false) }

// set reports whether the flag is known.
func (g *Gate) set(name string, on bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.flags[name]; !ok {
		return false
	}
	g.flags[name] = on
	return true
}

type Flag struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

func (g *Gate) Flags() []Flag {
	g.mu.RLock()
	out := make([]Flag, 0, len(g.flags))
	for name, on := range g.flags {
		out = append(out, Flag{Name: name, Enabled: on})
	}
	g.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Guard runs op only when name is enabled; otherwise it returns a
// FeatureDisabled error without calling op.
func Guard[T any](ctx context.Context, g *Gate, name string, op func(context.Context) (T, error)) (T, error) {
	if !g.Check(name) {
		var zero T
		return zero, apperr.FeatureDisabled(name)
	}
	return op(ctx)
}

// Require is the HTTP form of Guard. onDeny writes the rejection.
func (g *Gate) Require(name string, onDeny func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.Check(name) {
				onDeny(w, r, apperr.FeatureDisabled(name))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
