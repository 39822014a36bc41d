package app

import (
	"context"

	"github.com/dwikikusuma/cosmo-market/internal/cosmocat/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/feature"
	"github.com/google/uuid"
)

// Service serves the fixed cosmo-cat roster behind the cosmoCats flag.
type Service struct {
	gate *feature.Gate
	cats []domain.CosmoCat
}

func NewService(gate *feature.Gate) *Service {
	return &Service{
		gate: gate,
		cats: []domain.CosmoCat{
			{ID: uuid.New(), Name: "Capitan Meowkins", Description: "Expert in his work, for sure", Planet: "Meowturn", Years: 5},
			{ID: uuid.New(), Name: "Admiral Kitsunya", Description: "Beautiful and very smart cat", Planet: "Purina", Years: 10},
			{ID: uuid.New(), Name: "Commander Fluffykins", Description: "Knows technology better than people", Planet: "Cat-urn", Years: 6},
		},
	}
}

func (s *Service) List(ctx context.Context) ([]domain.CosmoCat, error) {
	return feature.Guard(ctx, s.gate, feature.CosmoCats, func(context.Context) ([]domain.CosmoCat, error) {
		out := make([]domain.CosmoCat, len(s.cats))
		copy(out, s.cats)
		return out, nil
	})
}
