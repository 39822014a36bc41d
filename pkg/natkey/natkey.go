// Package natkey resolves entities by a business key that is distinct from
// their surrogate id, e.g. the creation timestamp of a cart.
package natkey

import "context"

type Lookup[K comparable, E any] interface {
	FindByNaturalKey(ctx context.Context, key K) (E, bool, error)
}

// Func adapts a store method such as FindByCreatedAt.
type Func[K comparable, E any] func(ctx context.Context, key K) (E, bool, error)

func (f Func[K, E]) FindByNaturalKey(ctx context.Context, key K) (E, bool, error) {
	return f(ctx, key)
}

func Find[K comparable, E any](ctx context.Context, l Lookup[K, E], key K) (E, bool, error) {
	return l.FindByNaturalKey(ctx, key)
}

// Lister is the minimal read path Scan needs.
type Lister[E any] interface {
	FindAll(ctx context.Context) ([]E, error)
}

// Scan builds an index over FindAll for stores without a native secondary index.
// The index is rebuilt on every lookup so it never serves stale entries.
func Scan[K comparable, E any](l Lister[E], keyOf func(E) K) Lookup[K, E] {
	return Func[K, E](func(ctx context.Context, key K) (E, bool, error) {
		var zero E
		all, err := l.FindAll(ctx)
		if err != nil {
			return zero, false, err
		}
		index := make(map[K]E, len(all))
		for _, e := range all {
			index[keyOf(e)] = e
		}
		e, ok := index[key]
		if !ok {
			return zero, false, nil
		}
		return e, true, nil
	})
}
