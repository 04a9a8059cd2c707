package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var errSubscriptionClosed = errors.New("subscription closed")

const (
	publishTimeout = 2 * time.Second
	retryDelay     = 5 * time.Second
)

// Broadcaster receives encoded messages for local delivery.
type Broadcaster interface {
	Broadcast(data []byte)
}

// RedisRelay publishes events on a Redis channel and feeds everything that
// arrives on that channel, including its own events, into a local hub. With
// every instance running a relay, each hub sees each change exactly once.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	local      Broadcaster
	retryDelay time.Duration
}

func NewRedisRelay(client *redis.Client, channel string, local Broadcaster) *RedisRelay {
	return &RedisRelay{
		client:     client,
		channel:    channel,
		local:      local,
		retryDelay: retryDelay,
	}
}

func (r *RedisRelay) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		log.Printf("Failed to publish %s event to Redis: %v", eventType, err)
	}
}

// Run relays messages from the channel until ctx is done. Redis being
// unreachable only pauses the relay: failures are logged and the
// subscription is retried, so local delivery keeps working meanwhile.
func (r *RedisRelay) Run(ctx context.Context) {
	for {
		if err := r.relay(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Redis relay on %s stopped: %v; retrying in %s", r.channel, err, r.retryDelay)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retryDelay):
		}
	}
}

func (r *RedisRelay) relay(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// Block until Redis confirms the subscription.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	log.Printf("Relaying events through Redis channel %s", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errSubscriptionClosed
			}
			r.local.Broadcast([]byte(msg.Payload))
		}
	}
}
