// Package events defines the sequence lifecycle notifications emitted by
// the editing API: created, updated, published, deleted.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every sequence lifecycle event.
const Topic = "sequor.sequences"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	SequenceCreatedEvent   EventType = "sequence.created"
	SequenceUpdatedEvent   EventType = "sequence.updated"
	SequencePublishedEvent EventType = "sequence.published"
	SequenceDeletedEvent   EventType = "sequence.deleted"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	SequenceID string         `json:"sequence_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, sequenceID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		SequenceID: sequenceID,
	}
}

type SequenceCreated struct {
	BaseEvent

	Name    string `json:"name"`
	Version string `json:"version"`
}

func (e SequenceCreated) GetType() EventType {
	return SequenceCreatedEvent
}

type SequenceUpdated struct {
	BaseEvent

	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func (e SequenceUpdated) GetType() EventType {
	return SequenceUpdatedEvent
}

type SequencePublished struct {
	BaseEvent

	Name    string `json:"name"`
	Version string `json:"version"`
}

func (e SequencePublished) GetType() EventType {
	return SequencePublishedEvent
}

type SequenceDeleted struct {
	BaseEvent
}

func (e SequenceDeleted) GetType() EventType {
	return SequenceDeletedEvent
}
