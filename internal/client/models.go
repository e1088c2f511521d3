package client

import (
	"github.com/casa-acolhe/records-service/internal/document"
	"github.com/casa-acolhe/records-service/internal/episode"
)

// ClientInput carries the writable fields of a client record. NationalID
// is only honored on create; it is immutable afterwards.
type ClientInput struct {
	Name       string `json:"nome"`
	NationalID string `json:"cpf"`
	Email      string `json:"email"`
	Phone      string `json:"telefone"`
}

// FamilyMemberInput carries one family contact as submitted with a
// client. Entries with an empty name are silently dropped on write.
type FamilyMemberInput struct {
	Name         string `json:"nome"`
	Relationship string `json:"parentesco"`
	Phone        string `json:"telefone"`
	Email        string `json:"email"`
	Address      string `json:"endereco"`
	Notes        string `json:"observacoes"`
}

// Client is a persisted identity record. NationalID is stored digits-only.
type Client struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// FamilyMember is a persisted family contact belonging to one client.
type FamilyMember struct {
	ID           int64  `json:"id"`
	ClientID     int64  `json:"client_id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
}

// ClientWithEpisodes is one listing row group: a client and its matching
// episodes, most recently created first. A client with no episodes has
// an empty episode list.
type ClientWithEpisodes struct {
	Client
	Episodes []episode.Episode `json:"episodes"`
}

// ClientDetail is the full nested view of one client.
type ClientDetail struct {
	Client
	Episodes  []episode.Episode   `json:"episodes"`
	Family    []FamilyMember      `json:"family"`
	Documents []document.Document `json:"documents"`
}

// Episode status filter values as they appear on the request surface.
const (
	StatusActive    = "ativo"
	StatusFinalized = "finalizado"
)

// ListFilter holds the optional listing criteria. Zero values mean the
// criterion is not applied.
type ListFilter struct {
	Search    string
	Status    string
	EntryFrom string
	EntryTo   string
}

// Counts summarizes the listing header numbers. Orphaned episodes are
// excluded from both episode counts.
type Counts struct {
	TotalClients      int `json:"total_clients"`
	ActiveEpisodes    int `json:"active_episodes"`
	FinalizedEpisodes int `json:"finalized_episodes"`
}
