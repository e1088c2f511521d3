package messaging

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

const serviceName = "records-service"

// Event routing keys as constants
const (
	// Client events
	EventClientCreated = "client.created"
	EventClientUpdated = "client.updated"
	EventClientDeleted = "client.deleted"

	// Episode events
	EventEpisodeCreated   = "episode.created"
	EventEpisodeUpdated   = "episode.updated"
	EventEpisodeFinalized = "episode.finalized"
	EventEpisodeDeleted   = "episode.deleted"

	// Document events
	EventDocumentUploaded = "document.uploaded"
	EventDocumentDeleted  = "document.deleted"
)

// Envelope wraps every published event with common metadata.
type Envelope struct {
	EventType   string      `json:"event_type"`
	EventID     string      `json:"event_id"`
	Timestamp   time.Time   `json:"timestamp"`
	ServiceName string      `json:"service_name"`
	Data        interface{} `json:"data"`
}

// ClientEventData describes a client lifecycle event.
type ClientEventData struct {
	ClientID   int64  `json:"client_id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id,omitempty"`
	Email      string `json:"email,omitempty"`
}

// EpisodeEventData describes an episode lifecycle event.
type EpisodeEventData struct {
	EpisodeID int64  `json:"episode_id"`
	ClientID  int64  `json:"client_id,omitempty"`
	EntryDate string `json:"entry_date,omitempty"`
	ExitDate  string `json:"exit_date,omitempty"`
}

// DocumentEventData describes a document lifecycle event.
type DocumentEventData struct {
	DocumentID   int64  `json:"document_id"`
	ClientID     int64  `json:"client_id"`
	StoredName   string `json:"stored_name,omitempty"`
	OriginalName string `json:"original_name,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
}

// PublishEvent wraps data in an Envelope and publishes it best-effort.
// Publish failures are logged, never propagated: record writes must not
// fail because the broker is down.
func PublishEvent(ctx context.Context, p EventPublisher, routingKey string, data interface{}) {
	if p == nil {
		return
	}

	evt := Envelope{
		EventType:   routingKey,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: serviceName,
		Data:        data,
	}

	if err := p.Publish(ctx, routingKey, evt); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
