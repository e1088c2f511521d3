package client

import (
	"context"

	"github.com/casa-acolhe/records-service/internal/episode"
)

// ServiceInterface defines the client operations exposed to handlers.
type ServiceInterface interface {
	CreateClientWithEpisode(ctx context.Context, c ClientInput, ep episode.EpisodeInput, meds []episode.MedicationInput, family []FamilyMemberInput) (int64, error)
	UpdateClientAndFamily(ctx context.Context, clientID int64, c ClientInput, family []FamilyMemberInput) error
	DeleteClient(ctx context.Context, clientID int64) error
	GetClientDetail(ctx context.Context, clientID int64) (*ClientDetail, error)
	ListClients(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, Counts, error)
}
