package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fun-writing-be/internal/config"
	"fun-writing-be/internal/controller"
	"fun-writing-be/internal/handler"
	"fun-writing-be/internal/pkg/logger"
	"fun-writing-be/internal/pkg/mailer"
	"fun-writing-be/internal/repository/implementation"
	"fun-writing-be/internal/repository/memory"
	"fun-writing-be/internal/repository/unitofwork"
	"fun-writing-be/internal/service"
	"fun-writing-be/internal/websocket"
	"fun-writing-be/pkg/agents"
	"fun-writing-be/pkg/credits"
	pktNats "fun-writing-be/pkg/nats"
	"fun-writing-be/pkg/safety"
)

// pipelineTopic is the in-process topic carrying domain events from the
// services to the notification consumer.
const pipelineTopic = "pipeline.events"

type Container struct {
	// Controllers
	SubmissionController controller.ISubmissionController
	MediaController      controller.IMediaController
	CreditController     controller.ICreditController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Domain Infrastructure
	agentsClient := agents.NewClient(cfg.Agents.BaseURL)
	safetyGate := safety.NewGate(agentsClient, sysLogger)
	flightGuard := memory.NewFlightGuard()

	ledger := credits.NewLedger(
		credits.NewUowBalanceStore(uowFactory),
		credits.NewUowAuditSink(uowFactory),
		sysLogger,
		cfg.Credits.MaxCASRetries,
	)

	// 4. Services
	publisherService := service.NewPublisherService(pipelineTopic, pubSub)

	submissionService := service.NewSubmissionService(
		uowFactory,
		safetyGate,
		agentsClient,
		flightGuard,
		publisherService,
		emailService,
		cfg.Agents,
		sysLogger,
	)

	mediaService := service.NewMediaService(
		uowFactory,
		ledger,
		safetyGate,
		agentsClient,
		flightGuard,
		publisherService,
		cfg.Agents,
		cfg.Credits,
		sysLogger,
	)

	creditService := service.NewCreditService(
		uowFactory,
		ledger,
		publisherService,
		emailService,
		cfg.Payment,
		cfg.App.ClientURL,
		sysLogger,
	)

	// 5. Notification System
	notifRepo := implementation.NewNotificationRepository(db)

	consumerService := service.NewConsumerService(
		pubSub,
		pipelineTopic,
		notifRepo,
		natsPub,
	)

	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, natsPub, wsHub, wsLogger)

	// 6. Controllers
	return &Container{
		SubmissionController: controller.NewSubmissionController(submissionService),
		MediaController:      controller.NewMediaController(mediaService),
		CreditController:     controller.NewCreditController(creditService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
