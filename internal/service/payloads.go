package service

import "github.com/google/uuid"

// PortfolioPayload is the event payload for a portfolio generation batch.
type PortfolioPayload struct {
	BatchID   uuid.UUID `json:"batch_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

// BrandKitPayload is the event payload for a brand kit batch.
type BrandKitPayload struct {
	BatchID        uuid.UUID `json:"batch_id"`
	SourceUnitID   uuid.UUID `json:"source_unit_id"`
	SourceImageURL string    `json:"source_image_url"`
}

// RefinementPayload is the event payload for a refinement batch.
type RefinementPayload struct {
	BatchID        uuid.UUID `json:"batch_id"`
	SourceUnitID   uuid.UUID `json:"source_unit_id"`
	SourceImageURL string    `json:"source_image_url"`
}
