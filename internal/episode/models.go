package episode

import "time"

// EpisodeInput carries the writable fields of an admission/discharge
// record ("ficha"). An empty ExitDate means the episode is still active.
type EpisodeInput struct {
	EntryDate string `json:"data_entrada"`
	ExitDate  string `json:"data_saida"`
	Notes     string `json:"observacoes"`
}

// MedicationInput carries one medication row as submitted with an
// episode. Entries with an empty name are silently dropped on write.
type MedicationInput struct {
	Name      string `json:"nome"`
	Dosage    string `json:"dosagem"`
	Frequency string `json:"frequencia"`
	Notes     string `json:"observacoes"`
}

// Medication is a persisted medication row belonging to one episode.
type Medication struct {
	ID        int64  `json:"id"`
	EpisodeID int64  `json:"episode_id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Notes     string `json:"notes"`
}

// Episode is a persisted admission/discharge record. ExitDate is nil
// while the episode is active.
type Episode struct {
	ID          int64        `json:"id"`
	ClientID    int64        `json:"client_id"`
	EntryDate   string       `json:"entry_date"`
	ExitDate    *string      `json:"exit_date,omitempty"`
	Notes       string       `json:"notes"`
	CreatedAt   time.Time    `json:"created_at"`
	Medications []Medication `json:"medications,omitempty"`
}

// Active reports whether the episode has no recorded exit date.
func (e Episode) Active() bool {
	return e.ExitDate == nil || *e.ExitDate == ""
}
