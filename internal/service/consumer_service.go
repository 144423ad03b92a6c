package service

import (
	"context"
	"encoding/json"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventRelay forwards events to an external bus.
type EventRelay interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	relay     EventRelay
	logger    logger.ILogger
}

// NewConsumerService drains the in-process topic. A nil relay only logs.
func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, relay EventRelay, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		relay:     relay,
		logger:    log,
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
	var env events.Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		cs.logger.Error("EVENTS", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("EVENTS", "Recommendation event", map[string]interface{}{
		"type":       env.Type,
		"id":         env.ID,
		"session_id": env.Data["session_id"],
	})

	if cs.relay == nil {
		msg.Ack()
		return
	}
	if err := cs.relay.Publish(ctx, env.Event()); err != nil {
		cs.logger.Warn("EVENTS", "Relay failed, event dropped", map[string]interface{}{
			"type":  env.Type,
			"error": err.Error(),
		})
	}
	msg.Ack()
}
