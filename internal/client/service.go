package client

import (
	"context"
	"log"
	"strings"

	"github.com/casa-acolhe/records-service/internal/episode"
	"github.com/casa-acolhe/records-service/internal/messaging"
	"github.com/casa-acolhe/records-service/internal/validation"
)

// FileRemover removes stored document blobs by name. Satisfied by
// document.Store.
type FileRemover interface {
	Remove(storedName string) error
}

type Service struct {
	repo      RepositoryInterface
	files     FileRemover
	publisher messaging.EventPublisher
}

func NewService(repo RepositoryInterface, files FileRemover, publisher messaging.EventPublisher) *Service {
	return &Service{repo: repo, files: files, publisher: publisher}
}

// CreateClientWithEpisode validates the client fields, normalizes the
// national identifier to digits and delegates the atomic multi-table
// insert to the repository.
func (s *Service) CreateClientWithEpisode(ctx context.Context, c ClientInput, ep episode.EpisodeInput, meds []episode.MedicationInput, family []FamilyMemberInput) (int64, error) {
	if err := validateClientFields(c); err != nil {
		return 0, err
	}
	if strings.TrimSpace(ep.EntryDate) == "" {
		return 0, episode.ErrMissingEntryDate
	}

	c.NationalID = validation.StripNationalID(c.NationalID)

	clientID, err := s.repo.CreateClientWithEpisode(ctx, c, ep, meds, family)
	if err != nil {
		return 0, err
	}

	messaging.PublishEvent(ctx, s.publisher, messaging.EventClientCreated, messaging.ClientEventData{
		ClientID:   clientID,
		Name:       c.Name,
		NationalID: c.NationalID,
		Email:      c.Email,
	})

	return clientID, nil
}

// UpdateClientAndFamily validates the mutable fields and replaces the
// family list. The national identifier is immutable and ignored here.
func (s *Service) UpdateClientAndFamily(ctx context.Context, clientID int64, c ClientInput, family []FamilyMemberInput) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingEmail
	}
	if !validation.Email(c.Email) {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(c.Phone) == "" {
		return ErrMissingPhone
	}

	if err := s.repo.UpdateClientAndFamily(ctx, clientID, c, family); err != nil {
		return err
	}

	messaging.PublishEvent(ctx, s.publisher, messaging.EventClientUpdated, messaging.ClientEventData{
		ClientID: clientID,
		Name:     c.Name,
		Email:    c.Email,
	})

	return nil
}

// DeleteClient removes the client (children cascade in storage) and then
// removes the stored document files best-effort. File removal happens
// after the commit, so a disk failure never leaves a half-deleted client.
func (s *Service) DeleteClient(ctx context.Context, clientID int64) error {
	storedNames, err := s.repo.DeleteClient(ctx, clientID)
	if err != nil {
		return err
	}

	if s.files != nil {
		for _, name := range storedNames {
			if err := s.files.Remove(name); err != nil {
				log.Printf("Warning: failed to remove stored file %s for deleted client %d: %v", name, clientID, err)
			}
		}
	}

	messaging.PublishEvent(ctx, s.publisher, messaging.EventClientDeleted, messaging.ClientEventData{
		ClientID: clientID,
	})

	return nil
}

func (s *Service) GetClientDetail(ctx context.Context, clientID int64) (*ClientDetail, error) {
	return s.repo.GetClientDetail(ctx, clientID)
}

// ListClients sweeps orphaned episodes, then returns the filtered
// listing with the status counts.
func (s *Service) ListClients(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, Counts, error) {
	if removed, err := s.repo.SweepOrphanEpisodes(ctx); err != nil {
		// Best-effort maintenance; the listing itself is still served.
		log.Printf("Warning: orphan episode sweep failed: %v", err)
	} else if removed > 0 {
		log.Printf("Removed %d orphaned episode(s)", removed)
	}

	clients, err := s.repo.ListClients(ctx, f)
	if err != nil {
		return nil, Counts{}, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, Counts{}, err
	}

	return clients, counts, nil
}

func validateClientFields(c ClientInput) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if !validation.NationalID(c.NationalID) {
		return ErrInvalidNationalID
	}
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingEmail
	}
	if !validation.Email(c.Email) {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(c.Phone) == "" {
		return ErrMissingPhone
	}
	return nil
}
