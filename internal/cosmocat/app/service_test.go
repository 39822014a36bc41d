package app

import (
	"context"
	"errors"
	"testing"

	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/feature"
)

func TestList(t *testing.T) {
	ctx := context.Background()
	gate := feature.NewGate(map[string]bool{feature.CosmoCats: false})
	svc := NewService(gate)

	t.Run("disabled", func(t *testing.T) {
		cats, err := svc.List(ctx)
		if !errors.Is(err, apperr.ErrFeatureDisabled) {
			t.Fatalf("expected ErrFeatureDisabled, got %v", err)
		}
		if err.Error() != "Feature toggle cosmoCats is not enabled" {
			t.Fatalf("unexpected message %q", err.Error())
		}
		if cats != nil {
			t.Fatalf("expected no cats, got %v", cats)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		gate.Enable(feature.CosmoCats)
		defer gate.Disable(feature.CosmoCats)

		cats, err := svc.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cats) != 3 {
			t.Fatalf("expected 3 cats, got %d", len(cats))
		}
		if cats[0].Name != "Capitan Meowkins" || cats[1].Planet != "Purina" || cats[2].Years != 6 {
			t.Fatalf("unexpected roster %+v", cats)
		}

		cats[0].Name = "changed"
		again, _ := svc.List(ctx)
		if again[0].Name != "Capitan Meowkins" {
			t.Fatalf("roster must not be mutable through the result")
		}
	})
}
