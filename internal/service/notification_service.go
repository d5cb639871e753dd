package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fun-writing-be/internal/model"
	"fun-writing-be/internal/pkg/logger"
	"fun-writing-be/internal/repository"
	"fun-writing-be/pkg/events"
	pktNats "fun-writing-be/pkg/nats"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// NotificationService serves the inbox API and pushes bus events to
// connected clients in real time.
type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus. Safe to skip when NATS is down;
// the inbox still fills, only the live push is lost.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No event bus subscriber, real-time delivery disabled", nil)
		return
	}
	err := s.subscriber.Subscribe("events.>", "notif-delivery-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start delivery subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Delivery service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	if s.delivery == nil {
		return nil
	}

	payload := event.Payload()

	uidStr, ok := payload["user_id"].(string)
	if !ok {
		return nil
	}
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		return nil
	}

	notif := model.Notification{
		UserID:    userID,
		TypeCode:  event.EventType(),
		IsRead:    false,
		CreatedAt: event.Timestamp(),
	}
	if idStr, ok := payload["notification_id"].(string); ok {
		if nid, err := uuid.Parse(idStr); err == nil {
			notif.ID = nid
		}
	}
	if title, ok := payload["title"].(string); ok {
		notif.Title = title
	}
	if msg, ok := payload["message"].(string); ok {
		notif.Message = msg
	}
	if et, ok := payload["entity_type"].(string); ok {
		notif.EntityType = et
	}
	if eidStr, ok := payload["entity_id"].(string); ok {
		if eid, err := uuid.Parse(eidStr); err == nil {
			notif.EntityID = &eid
		}
	}
	if data, ok := payload["data"].(map[string]interface{}); ok && len(data) > 0 {
		if meta, err := json.Marshal(data); err == nil {
			notif.Metadata = datatypes.JSON(meta)
		}
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	s.delivery.Send(userID, notif)
	return nil
}

// GetNotifications fetches notifications for a user.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

// GetUnreadCount fetches unread count.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks a notification as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
