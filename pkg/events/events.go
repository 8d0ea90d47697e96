// Package events defines event types for generation run lifecycle notifications.
package events

import (
	"time"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

type EventType string

const Topic = "streamsuite.generation"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	GenerationStartedEvent   EventType = "generation.started"
	GenerationProgressEvent  EventType = "generation.progress"
	GenerationCompletedEvent EventType = "generation.completed"
	GenerationFailedEvent    EventType = "generation.failed"

	BatchArtifactCompletedEvent EventType = "batch.artifact.completed"

	CreditsDeductionFailedEvent EventType = "credits.deduction.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"request_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type GenerationStarted struct {
	BaseEvent

	Mode     models.GenerationMode `json:"mode"`
	Platform string                `json:"platform"`
}

func (e GenerationStarted) GetType() EventType {
	return GenerationStartedEvent
}

type GenerationProgress struct {
	BaseEvent

	State models.ProgressState `json:"state"`
}

func (e GenerationProgress) GetType() EventType {
	return GenerationProgressEvent
}

type GenerationCompleted struct {
	BaseEvent

	CorrelationID string `json:"correlation_id"`
	NodeCount     int    `json:"node_count"`
	ActualCost    int    `json:"actual_cost"`
}

func (e GenerationCompleted) GetType() EventType {
	return GenerationCompletedEvent
}

type GenerationFailed struct {
	BaseEvent

	Error string `json:"error"`
}

func (e GenerationFailed) GetType() EventType {
	return GenerationFailedEvent
}

type BatchArtifactCompleted struct {
	BaseEvent

	CorrelationID string `json:"correlation_id"`
	ArtifactName  string `json:"artifact_name"`
	Index         int    `json:"index"`
	Total         int    `json:"total"`
}

func (e BatchArtifactCompleted) GetType() EventType {
	return BatchArtifactCompletedEvent
}

type CreditsDeductionFailed struct {
	BaseEvent

	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

func (e CreditsDeductionFailed) GetType() EventType {
	return CreditsDeductionFailedEvent
}
