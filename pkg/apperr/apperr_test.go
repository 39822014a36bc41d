package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
)

func TestKindMatching(t *testing.T) {
	cartID := uuid.New()
	itemID := uuid.New()

	t.Run("item not found is not parent not found", func(t *testing.T) {
		err := CartItemNotFound(itemID, cartID)
		if !errors.Is(err, ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
		if errors.Is(err, ErrNotFound) {
			t.Fatalf("item not found must not match ErrNotFound")
		}
		if err.Fields["item_id"] != itemID.String() || err.Fields["cart_id"] != cartID.String() {
			t.Fatalf("unexpected fields %v", err.Fields)
		}
	})

	t.Run("wrapped error keeps kind", func(t *testing.T) {
		err := fmt.Errorf("add item: %w", CartNotFound(cartID))
		if KindOf(err) != KindNotFound {
			t.Fatalf("expected KindNotFound, got %s", KindOf(err))
		}
		want := fmt.Sprintf("add item: Cart not found: '%s'", cartID)
		if err.Error() != want {
			t.Fatalf("got %q, want %q", err.Error(), want)
		}
	})

	t.Run("plain error is internal", func(t *testing.T) {
		if KindOf(errors.New("boom")) != KindInternal {
			t.Fatalf("expected KindInternal")
		}
	})

	t.Run("feature disabled message", func(t *testing.T) {
		err := FeatureDisabled("cosmoCats")
		if err.Error() != "Feature toggle cosmoCats is not enabled" {
			t.Fatalf("got %q", err.Error())
		}
		if !errors.Is(err, ErrFeatureDisabled) {
			t.Fatalf("expected ErrFeatureDisabled")
		}
	})
}

func TestGRPCCode(t *testing.T) {
	cases := map[Kind]codes.Code{
		KindValidation:      codes.InvalidArgument,
		KindNotFound:        codes.NotFound,
		KindItemNotFound:    codes.NotFound,
		KindProductNotFound: codes.NotFound,
		KindFeatureDisabled: codes.NotFound,
		KindConflict:        codes.AlreadyExists,
		KindInternal:        codes.Internal,
	}
	for kind, want := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			if got := GRPCCode(kind); got != want {
				t.Fatalf("got %s, want %s", got, want)
			}
		})
	}
}
