package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	alertChannelPattern = "integration:*:alerts"
	channelPrefix       = "integration:"
	channelSuffix       = ":alerts"
)

// Subscriber relays alert batches from Redis pubsub to websocket clients.
type Subscriber struct {
	redisClient *redis.Client
	hub         *Hub
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewSubscriber(redisClient *redis.Client, hub *Hub) *Subscriber {
	return &Subscriber{
		redisClient: redisClient,
		hub:         hub,
	}
}

// Start returns once the pattern subscription is confirmed.
func (s *Subscriber) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	pubsub := s.redisClient.PSubscribe(ctx, alertChannelPattern)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		s.cancel()
		return fmt.Errorf("subscribe %s: %w", alertChannelPattern, err)
	}

	s.wg.Add(1)
	go s.run(ctx, pubsub)
	return nil
}

func (s *Subscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Subscriber) run(ctx context.Context, pubsub *redis.PubSub) {
	defer s.wg.Done()
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Info().Str("pattern", alertChannelPattern).Msg("WebSocket subscriber started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("WebSocket subscriber stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handleMessage(msg)
		}
	}
}

func (s *Subscriber) handleMessage(msg *redis.Message) {
	integrationID, ok := parseAlertChannel(msg.Channel)
	if !ok {
		log.Warn().Str("channel", msg.Channel).Msg("Ignoring message on unexpected channel")
		return
	}
	if !json.Valid([]byte(msg.Payload)) {
		log.Error().Str("channel", msg.Channel).Msg("Dropping non-JSON alert payload")
		return
	}

	s.hub.SendToIntegration(integrationID, AlertsEvent([]byte(msg.Payload)))
}

// parseAlertChannel extracts the id from integration:{id}:alerts.
func parseAlertChannel(channel string) (string, bool) {
	if len(channel) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(channel, channelPrefix) || !strings.HasSuffix(channel, channelSuffix) {
		return "", false
	}
	id := channel[len(channelPrefix) : len(channel)-len(channelSuffix)]
	return id, true
}
