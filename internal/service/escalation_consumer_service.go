package service

import (
	"context"

	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/pkg/mailer"
	"udla-mentor-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var escalationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "helpdesk_escalations_total",
	Help: "Escalated cases consumed from the event bus, by source.",
}, []string{"source"})

// EscalationNotifier pushes an escalation to live mentors.
type EscalationNotifier interface {
	Notify(ctx context.Context, e events.Event) error
}

// EventForwarder sends an escalation to an external bus.
type EventForwarder interface {
	Publish(ctx context.Context, e events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type escalationConsumerService struct {
	subscriber message.Subscriber
	topicName  string
	notifier   EscalationNotifier
	mailer     mailer.IEmailService
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewEscalationConsumerService fans escalation events out to mentors. mail and forwarder may be nil.
func NewEscalationConsumerService(
	subscriber message.Subscriber,
	topicName string,
	notifier EscalationNotifier,
	mail mailer.IEmailService,
	forwarder EventForwarder,
	log logger.ILogger,
) IConsumerService {
	return &escalationConsumerService{
		subscriber: subscriber,
		topicName:  topicName,
		notifier:   notifier,
		mailer:     mail,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *escalationConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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

// processMessage always acks: every sink is best effort and a redelivery would
// notify mentors twice.
func (cs *escalationConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("EscalationConsumer", "Failed to decode event", map[string]interface{}{"error": err.Error()})
		return
	}
	if event.EventType() != events.TypeCaseEscalated {
		return
	}

	sessionID := event.Field("session_id")
	escalationsTotal.WithLabelValues(event.Field("source")).Inc()

	// 1. Live feed
	if cs.notifier != nil {
		if err := cs.notifier.Notify(ctx, event); err != nil {
			cs.logger.Warn("EscalationConsumer", "Failed to notify mentors", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		}
	}

	// 2. Mail to the mentor on duty
	if cs.mailer != nil {
		alert := mailer.EscalationAlert{
			SessionID:   sessionID,
			Source:      event.Field("source"),
			Certificate: event.Field("certificate"),
			Nickname:    event.Field("nickname"),
			Career:      event.Field("career"),
			Email:       event.Field("email"),
			At:          event.Timestamp(),
		}
		if err := cs.mailer.SendEscalationAlert(alert); err != nil {
			cs.logger.Warn("EscalationConsumer", "Failed to mail escalation", map[string]interface{}{"session_id": sessionID})
		}
	}

	// 3. External bus
	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			cs.logger.Warn("EscalationConsumer", "Failed to forward escalation", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		}
	}

	cs.logger.Info("EscalationConsumer", "Escalation dispatched", map[string]interface{}{
		"session_id": sessionID,
		"source":     event.Field("source"),
	})
}
