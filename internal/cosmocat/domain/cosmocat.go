package domain

import "github.com/google/uuid"

type CosmoCat struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Planet      string    `json:"planet"`
	Years       int       `json:"years"`
}
