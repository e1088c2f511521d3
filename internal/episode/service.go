package episode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casa-acolhe/records-service/internal/messaging"
)

type Service struct {
	repo      RepositoryInterface
	publisher messaging.EventPublisher
}

func NewService(repo RepositoryInterface, publisher messaging.EventPublisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

func (s *Service) CreateEpisode(ctx context.Context, clientID int64, ep EpisodeInput, meds []MedicationInput) (int64, error) {
	if strings.TrimSpace(ep.EntryDate) == "" {
		return 0, ErrMissingEntryDate
	}

	episodeID, err := s.repo.CreateEpisode(ctx, clientID, ep, meds)
	if err != nil {
		return 0, err
	}

	messaging.PublishEvent(ctx, s.publisher, messaging.EventEpisodeCreated, messaging.EpisodeEventData{
		EpisodeID: episodeID,
		ClientID:  clientID,
		EntryDate: ep.EntryDate,
	})

	return episodeID, nil
}

func (s *Service) UpdateEpisodeAndMedications(ctx context.Context, episodeID int64, ep EpisodeInput, meds []MedicationInput) error {
	if strings.TrimSpace(ep.EntryDate) == "" {
		return ErrMissingEntryDate
	}

	if err := s.repo.UpdateEpisodeAndMedications(ctx, episodeID, ep, meds); err != nil {
		return err
	}

	messaging.PublishEvent(ctx, s.publisher, messaging.EventEpisodeUpdated, messaging.EpisodeEventData{
		EpisodeID: episodeID,
		EntryDate: ep.EntryDate,
		ExitDate:  ep.ExitDate,
	})

	return nil
}

// FinalizeEpisode stamps today's date as the exit date and returns the
// updated episode.
func (s *Service) FinalizeEpisode(ctx context.Context, episodeID int64) (*Episode, error) {
	exitDate := time.Now().UTC().Format("2006-01-02")

	if err := s.repo.FinalizeEpisode(ctx, episodeID, exitDate); err != nil {
		return nil, err
	}

	ep, err := s.repo.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload episode: %w", err)
	}

	messaging.PublishEvent(ctx, s.publisher, messaging.EventEpisodeFinalized, messaging.EpisodeEventData{
		EpisodeID: episodeID,
		ClientID:  ep.ClientID,
		ExitDate:  exitDate,
	})

	return ep, nil
}

func (s *Service) DeleteEpisode(ctx context.Context, episodeID int64) error {
	if err := s.repo.DeleteEpisode(ctx, episodeID); err != nil {
		return err
	}

	messaging.PublishEvent(ctx, s.publisher, messaging.EventEpisodeDeleted, messaging.EpisodeEventData{
		EpisodeID: episodeID,
	})

	return nil
}

func (s *Service) GetEpisode(ctx context.Context, episodeID int64) (*Episode, error) {
	return s.repo.GetEpisode(ctx, episodeID)
}
