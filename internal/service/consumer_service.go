package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fun-writing-be/internal/dto"
	"fun-writing-be/internal/model"
	"fun-writing-be/internal/repository"
	"fun-writing-be/pkg/events"
	pktNats "fun-writing-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process pipeline topic: each event becomes a
// stored notification and a record on the external bus. Real-time delivery
// happens downstream, off the bus.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	notifRepo      repository.NotificationRepository
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	notifRepo repository.NotificationRepository,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		notifRepo:      notifRepo,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PipelineEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal pipeline event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	userId, err := uuid.Parse(payload.UserId)
	if err != nil {
		log.Printf("[ERROR] Pipeline event %s has no valid user id: %v", payload.Type, err)
		msg.Ack()
		return
	}

	notif := model.Notification{
		ID:         uuid.New(),
		UserID:     userId,
		TypeCode:   payload.Type,
		EntityType: payload.EntityType,
		Title:      payload.Title,
		Message:    payload.Message,
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
	if payload.EntityId != "" {
		if eid, err := uuid.Parse(payload.EntityId); err == nil {
			notif.EntityID = &eid
		}
	}
	if len(payload.Data) > 0 {
		if meta, err := json.Marshal(payload.Data); err == nil {
			notif.Metadata = datatypes.JSON(meta)
		}
	}

	if err := cs.notifRepo.CreateNotification(ctx, &notif); err != nil {
		log.Printf("[ERROR] Failed to save notification for user %s: %v", userId, err)
		msg.Nack() // retriable
		return
	}

	// Forward to the external bus; real-time delivery and any other
	// consumers (analytics, parents app) hang off it.
	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: payload.Type,
			Data: map[string]interface{}{
				"notification_id": notif.ID.String(),
				"user_id":         payload.UserId,
				"entity_type":     payload.EntityType,
				"entity_id":       payload.EntityId,
				"title":           payload.Title,
				"message":         payload.Message,
				"data":            payload.Data,
			},
			OccurredAt: payload.OccurredAt,
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to forward event %s to bus: %v", payload.Type, err)
			// Notification already saved and pushed; do not replay.
		}
	}

	msg.Ack()
}
