package client

import (
	"context"

	"github.com/casa-acolhe/records-service/internal/episode"
)

// RepositoryInterface defines the data access contract for clients and
// their family contacts.
type RepositoryInterface interface {
	CreateClientWithEpisode(ctx context.Context, c ClientInput, ep episode.EpisodeInput, meds []episode.MedicationInput, family []FamilyMemberInput) (int64, error)
	UpdateClientAndFamily(ctx context.Context, clientID int64, c ClientInput, family []FamilyMemberInput) error
	DeleteClient(ctx context.Context, clientID int64) ([]string, error)
	GetClientDetail(ctx context.Context, clientID int64) (*ClientDetail, error)
	ListClients(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, error)
	CountByStatus(ctx context.Context) (Counts, error)
	SweepOrphanEpisodes(ctx context.Context) (int64, error)
}
