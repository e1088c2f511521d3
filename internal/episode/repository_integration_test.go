package episode

import (
	"context"
	"errors"
	"testing"

	"github.com/casa-acolhe/records-service/internal/testutil"
)

// TestRepositoryCreateEpisode tests inserting an episode with medications
func TestRepositoryCreateEpisode(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := NewRepository(database)

	clientID := testutil.SeedClient(t, database, "Maria Souza", "12345678901", "maria@example.com", "1")

	episodeID, err := repo.CreateEpisode(context.Background(), clientID,
		EpisodeInput{EntryDate: "2026-01-10", Notes: "retorno"},
		[]MedicationInput{
			{Name: "Dipirona", Dosage: "500mg", Frequency: "8h"},
			{Name: "   "}, // blank name is dropped
		},
	)
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	ep, err := repo.GetEpisode(context.Background(), episodeID)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}

	if ep.ClientID != clientID {
		t.Errorf("Expected client id %d, got %d", clientID, ep.ClientID)
	}
	if !ep.Active() {
		t.Error("Expected episode without exit date to be active")
	}
	if len(ep.Medications) != 1 {
		t.Errorf("Expected 1 medication (blank name dropped), got %d", len(ep.Medications))
	}
}

// TestRepositoryCreateEpisode_ClientNotFound tests the existence check
func TestRepositoryCreateEpisode_ClientNotFound(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := NewRepository(database)

	_, err := repo.CreateEpisode(context.Background(), 999,
		EpisodeInput{EntryDate: "2026-01-10"}, nil)

	if !errors.Is(err, ErrClientNotFound) {
		t.Errorf("Expected ErrClientNotFound, got: %v", err)
	}
	if got := testutil.CountRows(t, database, "episodes"); got != 0 {
		t.Errorf("Expected no episode written, got %d", got)
	}
}

// TestRepositoryUpdateEpisode_ReplacesMedications tests the full-replace semantics
func TestRepositoryUpdateEpisode_ReplacesMedications(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := NewRepository(database)

	clientID := testutil.SeedClient(t, database, "Maria Souza", "12345678901", "maria@example.com", "1")
	episodeID, err := repo.CreateEpisode(context.Background(), clientID,
		EpisodeInput{EntryDate: "2026-01-10"},
		[]MedicationInput{{Name: "Dipirona"}, {Name: "Paracetamol"}, {Name: "Ibuprofeno"}},
	)
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	err = repo.UpdateEpisodeAndMedications(context.Background(), episodeID,
		EpisodeInput{EntryDate: "2026-01-12", ExitDate: "", Notes: "ajustado"},
		[]MedicationInput{{Name: "Amoxicilina", Dosage: "250mg"}},
	)
	if err != nil {
		t.Fatalf("UpdateEpisodeAndMedications failed: %v", err)
	}

	ep, err := repo.GetEpisode(context.Background(), episodeID)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}

	if ep.EntryDate != "2026-01-12" {
		t.Errorf("Expected entry date updated, got '%s'", ep.EntryDate)
	}
	if len(ep.Medications) != 1 || ep.Medications[0].Name != "Amoxicilina" {
		t.Errorf("Expected medications replaced with [Amoxicilina], got %+v", ep.Medications)
	}
}

// TestRepositoryUpdateEpisode_NotFound tests updating an unknown episode
func TestRepositoryUpdateEpisode_NotFound(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := NewRepository(database)

	err := repo.UpdateEpisodeAndMedications(context.Background(), 999,
		EpisodeInput{EntryDate: "2026-01-10"}, nil)

	if !errors.Is(err, ErrEpisodeNotFound) {
		t.Errorf("Expected ErrEpisodeNotFound, got: %v", err)
	}
}

// TestRepositoryFinalizeEpisode tests recording the exit date
func TestRepositoryFinalizeEpisode(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := NewRepository(database)

	clientID := testutil.SeedClient(t, database, "Maria Souza", "12345678901", "maria@example.com", "1")
	episodeID := testutil.SeedEpisode(t, database, clientID, "2026-01-10", "")

	if err := repo.FinalizeEpisode(context.Background(), episodeID, "2026-02-01"); err != nil {
		t.Fatalf("FinalizeEpisode failed: %v", err)
	}

	ep, err := repo.GetEpisode(context.Background(), episodeID)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}

	if ep.Active() {
		t.Error("Expected finalized episode to be inactive")
	}
	if ep.ExitDate == nil || *ep.ExitDate != "2026-02-01" {
		t.Errorf("Expected exit date '2026-02-01', got %v", ep.ExitDate)
	}
}

// TestRepositoryDeleteEpisode_CascadesMedications tests the cascade
func TestRepositoryDeleteEpisode_CascadesMedications(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := NewRepository(database)

	clientID := testutil.SeedClient(t, database, "Maria Souza", "12345678901", "maria@example.com", "1")
	episodeID, err := repo.CreateEpisode(context.Background(), clientID,
		EpisodeInput{EntryDate: "2026-01-10"},
		[]MedicationInput{{Name: "Dipirona"}},
	)
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	if err := repo.DeleteEpisode(context.Background(), episodeID); err != nil {
		t.Fatalf("DeleteEpisode failed: %v", err)
	}

	if got := testutil.CountRows(t, database, "medications"); got != 0 {
		t.Errorf("Expected medications cascaded, got %d rows", got)
	}
	// The client itself stays
	if got := testutil.CountRows(t, database, "clients"); got != 1 {
		t.Errorf("Expected client untouched, got %d rows", got)
	}
}

// TestRepositoryGetEpisode_NotFound tests fetching an unknown episode
func TestRepositoryGetEpisode_NotFound(t *testing.T) {
	database := testutil.SetupTestDB(t)
	repo := NewRepository(database)

	_, err := repo.GetEpisode(context.Background(), 999)
	if !errors.Is(err, ErrEpisodeNotFound) {
		t.Errorf("Expected ErrEpisodeNotFound, got: %v", err)
	}
}
