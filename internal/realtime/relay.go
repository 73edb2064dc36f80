package realtime

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trailmark/routes-backend/internal/pkg/queue"
)

// StartCompletionRelay subscribes to the queue's completion events and
// forwards each payload, byte-for-byte, to any locally connected
// websocket subscribers of that route. It never reshapes or re-derives
// the payload: the worker already published the exact frame clients
// are meant to see. It returns immediately; relaying happens on the
// NATS client's own dispatch goroutine.
func StartCompletionRelay(q *queue.Client, hub *Hub) error {
	_, err := q.SubscribeCompletions(func(routeID uuid.UUID, payload []byte) {
		hub.Publish(routeID, payload)
	})
	if err != nil {
		log.Error().Err(err).Msg("realtime: failed to subscribe to completion events")
	}
	return err
}
