package dto

import "time"

// PipelineEventMessage is the payload carried on the in-process event topic.
// The consumer persists it as a notification and forwards it to the event bus.
type PipelineEventMessage struct {
	Type       string                 `json:"type"`
	UserId     string                 `json:"user_id"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	EntityType string                 `json:"entity_type,omitempty"`
	EntityId   string                 `json:"entity_id,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}
