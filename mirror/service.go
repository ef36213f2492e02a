package mirror

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// pub/sub channel subscribed by connected clients
const eventChannel = "channel-events"

// Service maintains the realtime copy of the channel state in redis.
// It is a best-effort side-store: the MongoDB documents remain the source
// of truth and clients must be able to survive a diverging mirror.
type Service struct {
	client *redis.Client
}

func NewService(client *redis.Client) *Service {
	return &Service{client: client}
}

// Apply replays one event into the store and broadcasts it.
// Returned errors are handled by the outbox (retry, then log).
func (s *Service) Apply(event Event) error {

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel() // cancel after 5 seconds

	key := "channel:" + event.ChannelID

	switch event.Kind {
	case EventChannelCreated:
		if err := s.client.HSet(ctx, key,
			"name", str(event.Data["name"]),
			"pollID", str(event.Data["pollID"]),
			"creator", str(event.Data["creator"]),
			"isActive", "true",
			"lastActivity", time.Now().Format(time.RFC3339),
		).Err(); err != nil {
			return err
		}
		if creator := str(event.Data["creator"]); creator != "" {
			if err := s.client.SAdd(ctx, key+":members", creator).Err(); err != nil {
				return err
			}
		}

	case EventParticipantJoin:
		if err := s.client.SAdd(ctx, key+":members", str(event.Data["userID"])).Err(); err != nil {
			return err
		}

	case EventParticipantLeave:
		if err := s.client.SRem(ctx, key+":members", str(event.Data["userID"])).Err(); err != nil {
			return err
		}

	case EventMessageSent:
		msg, err := json.Marshal(event.Data)
		if err != nil {
			return err
		}
		if err := s.client.RPush(ctx, key+":messages", msg).Err(); err != nil {
			return err
		}
		if err := s.client.HSet(ctx, key, "lastActivity", time.Now().Format(time.RFC3339)).Err(); err != nil {
			return err
		}

	case EventMessageRead:
		// read-receipts are only broadcast, not persisted in the mirror

	case EventChannelClosed:
		if err := s.client.HSet(ctx, key, "isActive", "false").Err(); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.client.Publish(ctx, eventChannel, payload).Err()
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
