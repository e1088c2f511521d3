package episode

import "context"

// ServiceInterface defines the episode operations exposed to handlers.
type ServiceInterface interface {
	CreateEpisode(ctx context.Context, clientID int64, ep EpisodeInput, meds []MedicationInput) (int64, error)
	UpdateEpisodeAndMedications(ctx context.Context, episodeID int64, ep EpisodeInput, meds []MedicationInput) error
	FinalizeEpisode(ctx context.Context, episodeID int64) (*Episode, error)
	DeleteEpisode(ctx context.Context, episodeID int64) error
	GetEpisode(ctx context.Context, episodeID int64) (*Episode, error)
}
