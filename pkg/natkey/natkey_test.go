package natkey

import (
	"context"
	"errors"
	"testing"
	"time"
)

type record struct {
	ID        int
	CreatedAt time.Time
}

type fakeLister struct {
	items []record
	err   error
	calls int
}

func (f *fakeLister) FindAll(ctx context.Context) ([]record, error) {
	f.calls++
	return f.items, f.err
}

func TestScan(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 123000, time.UTC)
	t1 := t0.Add(time.Microsecond)
	l := &fakeLister{items: []record{{ID: 1, CreatedAt: t0}, {ID: 2, CreatedAt: t1}}}
	lookup := Scan[time.Time](l, func(r record) time.Time { return r.CreatedAt })

	t.Run("hit", func(t *testing.T) {
		got, ok, err := Find(context.Background(), lookup, t1)
		if err != nil || !ok || got.ID != 2 {
			t.Fatalf("got (%+v,%v,%v)", got, ok, err)
		}
	})

	t.Run("miss", func(t *testing.T) {
		_, ok, err := Find(context.Background(), lookup, t1.Add(time.Second))
		if err != nil || ok {
			t.Fatalf("expected miss, got (%v,%v)", ok, err)
		}
	})

	t.Run("store error propagates", func(t *testing.T) {
		boom := errors.New("boom")
		failing := Scan[time.Time](&fakeLister{err: boom}, func(r record) time.Time { return r.CreatedAt })
		if _, _, err := Find(context.Background(), failing, t0); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})
}

func TestFunc(t *testing.T) {
	called := false
	var lookup Lookup[string, int] = Func[string, int](func(ctx context.Context, key string) (int, bool, error) {
		called = true
		return len(key), true, nil
	})
	got, ok, err := Find(context.Background(), lookup, "comet")
	if err != nil || !ok || got != 5 || !called {
		t.Fatalf("got (%d,%v,%v)", got, ok, err)
	}
}
