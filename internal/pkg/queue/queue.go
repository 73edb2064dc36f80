package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	// StreamName is the durable JetStream stream backing the photo
	// processing work queue.
	StreamName = "PHOTOS"
	// TasksSubject is where route creation/update handlers publish
	// PhotoProcessTask messages.
	TasksSubject = "photos.tasks"
	// DurableConsumer is the name of the worker's pull consumer. All
	// photo-worker instances share this consumer so a task is delivered
	// to exactly one of them at a time.
	DurableConsumer = "photo-worker"
	// AckWait bounds how long JetStream waits for an ack before
	// redelivering a task. The processing pipeline (decode, resize,
	// thumbnail, two uploads) can run long on large images, so this is
	// generous rather than tight.
	AckWait = 120 * time.Second
	// MaxDeliver caps redelivery attempts before JetStream stops
	// retrying a poisoned message.
	MaxDeliver = 3

	completionSubjectPrefix = "photos.completed."
)

// PhotoProcessTask is the unit of work enqueued for one route mutation.
// PointIndices names which entries in the route's points array carry a
// pending inline photo; the worker resolves each independently.
type PhotoProcessTask struct {
	RouteID      uuid.UUID `json:"route_id"`
	UserID       uuid.UUID `json:"user_id"`
	PointIndices []int     `json:"point_indices"`
}

func completionSubject(routeID uuid.UUID) string {
	return completionSubjectPrefix + routeID.String()
}

// Client wraps a JetStream context with the stream/consumer topology
// this service needs.
type Client struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// Connect dials NATS and opens a JetStream context.
func Connect(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Client{nc: nc, js: js}, nil
}

// Close closes the underlying NATS connection without draining it.
func (c *Client) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

// EnsureStream creates the PHOTOS stream if it does not already exist.
func (c *Client) EnsureStream() error {
	_, err := c.js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if err != nats.ErrStreamNotFound {
		return fmt.Errorf("lookup stream %s: %w", StreamName, err)
	}

	_, err = c.js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{TasksSubject},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}
	return nil
}

// EnsureConsumer creates the durable pull consumer used by photo-worker
// instances if it doesn't already exist.
func (c *Client) EnsureConsumer() error {
	_, err := c.js.ConsumerInfo(StreamName, DurableConsumer)
	if err == nil {
		return nil
	}
	if err != nats.ErrConsumerNotFound {
		return fmt.Errorf("lookup consumer %s: %w", DurableConsumer, err)
	}

	_, err = c.js.AddConsumer(StreamName, &nats.ConsumerConfig{
		Durable:       DurableConsumer,
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       AckWait,
		MaxDeliver:    MaxDeliver,
		DeliverPolicy: nats.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", DurableConsumer, err)
	}
	return nil
}

// PublishTask enqueues a photo processing task durably.
func (c *Client) PublishTask(ctx context.Context, task PhotoProcessTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	_, err = c.js.Publish(TasksSubject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("publish task: %w", err)
	}
	return nil
}

// PublishCompletion announces a route's photo processing outcome.
// payload is published verbatim: callers own its shape (the external
// contract is the exact bytes handed here), this client only routes it
// to the right subject.
func (c *Client) PublishCompletion(routeID uuid.UUID, payload []byte) error {
	if err := c.nc.Publish(completionSubject(routeID), payload); err != nil {
		return fmt.Errorf("publish completion event: %w", err)
	}
	return nil
}

// SubscribeCompletions subscribes to every route's completion subject
// via a wildcard, handing the route ID (parsed from the subject) and
// the raw, unmodified payload bytes to fn. The subscription is
// non-durable: it exists only to relay to in-memory websocket
// subscribers, never to persist state.
func (c *Client) SubscribeCompletions(fn func(routeID uuid.UUID, payload []byte)) (*nats.Subscription, error) {
	return c.nc.Subscribe(completionSubjectPrefix+"*", func(msg *nats.Msg) {
		routeID, err := uuid.Parse(strings.TrimPrefix(msg.Subject, completionSubjectPrefix))
		if err != nil {
			return
		}
		fn(routeID, msg.Data)
	})
}

// PullSubscribe opens a pull-based subscription bound to the durable
// worker consumer.
func (c *Client) PullSubscribe() (*nats.Subscription, error) {
	return c.js.PullSubscribe(TasksSubject, DurableConsumer, nats.BindStream(StreamName))
}

// Fetch pulls up to batch messages, blocking up to the context deadline.
func Fetch(ctx context.Context, sub *nats.Subscription, batch int) ([]*nats.Msg, error) {
	return sub.Fetch(batch, nats.Context(ctx))
}
