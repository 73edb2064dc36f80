package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/trailmark/routes-backend/internal/domain/route"
	"github.com/trailmark/routes-backend/internal/pkg/imaging"
	"github.com/trailmark/routes-backend/internal/pkg/queue"
	"github.com/trailmark/routes-backend/internal/pkg/storage"
)

// RouteRepository is the narrow slice of route persistence the worker
// needs: load the current row, and blind-write the processed points
// back.
type RouteRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*route.Route, error)
	UpdatePoints(ctx context.Context, id uuid.UUID, points route.Points) error
}

// Worker pulls PhotoProcessTask messages, transcodes each inline photo,
// uploads the results, and rewrites the owning route's points.
type Worker struct {
	queue     *queue.Client
	repo      RouteRepository
	store     storage.Storage
	processor *imaging.Processor
}

// New creates a photo worker.
func New(q *queue.Client, repo RouteRepository, store storage.Storage, processor *imaging.Processor) *Worker {
	return &Worker{
		queue:     q,
		repo:      repo,
		store:     store,
		processor: processor,
	}
}

// Run pulls tasks one at a time until ctx is cancelled. Each fetch
// blocks up to a short timeout so the loop can observe cancellation
// promptly even with nothing to do.
func (w *Worker) Run(ctx context.Context) error {
	sub, err := w.queue.PullSubscribe()
	if err != nil {
		return fmt.Errorf("open pull subscription: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		msgs, err := queue.Fetch(fetchCtx, sub, 1)
		cancel()
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("photo worker: fetch failed")
			continue
		}

		for _, msg := range msgs {
			w.handle(ctx, msg)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *nats.Msg) {
	var task queue.PhotoProcessTask
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		log.Error().Err(err).Msg("photo worker: malformed task payload, leaving unacked for redelivery")
		return
	}

	rt, err := w.repo.GetByID(ctx, task.RouteID)
	if err != nil {
		log.Error().Err(err).Str("route_id", task.RouteID.String()).Msg("photo worker: failed to load route")
		return
	}
	if rt == nil {
		// Route was deleted after the task was enqueued; nothing to do.
		_ = msg.Ack()
		return
	}

	for _, i := range task.PointIndices {
		w.processIndex(ctx, rt, i)
	}

	if err := w.repo.UpdatePoints(ctx, rt.ID, rt.Points); err != nil {
		log.Error().Err(err).Str("route_id", rt.ID.String()).Msg("photo worker: failed to write processed points")
		return
	}

	if err := w.publishCompletion(rt); err != nil {
		log.Warn().Err(err).Str("route_id", rt.ID.String()).Msg("photo worker: completion publish failed, swallowed")
	}

	if err := msg.Ack(); err != nil {
		log.Error().Err(err).Str("route_id", rt.ID.String()).Msg("photo worker: failed to ack task")
	}
}

// processIndex resolves a single point's photo in place. It never
// returns an error: every failure mode is recorded on the photo as
// Failed so the remaining indices are unaffected.
func (w *Worker) processIndex(ctx context.Context, rt *route.Route, i int) {
	if i < 0 || i >= len(rt.Points) {
		log.Warn().Str("route_id", rt.ID.String()).Int("index", i).Msg("photo worker: task index out of bounds, skipping")
		return
	}

	pt := &rt.Points[i]
	if pt.Photo == nil || !pt.Photo.IsInline() {
		// Already resolved, or never had a photo: idempotent no-op,
		// also the path duplicate redeliveries land on.
		return
	}

	raw, err := decodeDataURL(pt.Photo.Original)
	if err != nil {
		w.markFailed(pt, pt.Photo.Original)
		log.Warn().Err(err).Str("route_id", rt.ID.String()).Int("index", i).Msg("photo worker: decode failed")
		return
	}

	processed, err := w.processor.Process(bytes.NewReader(raw))
	if err != nil {
		w.markFailed(pt, pt.Photo.Original)
		log.Warn().Err(err).Str("route_id", rt.ID.String()).Int("index", i).Msg("photo worker: transcode failed")
		return
	}

	fullKey := fmt.Sprintf("%s/%s/photo_%d.jpg", rt.UserID, rt.ID, i)
	if err := w.store.Put(ctx, fullKey, bytes.NewReader(processed.Full), "image/jpeg"); err != nil {
		w.markFailed(pt, pt.Photo.Original)
		log.Warn().Err(err).Str("route_id", rt.ID.String()).Int("index", i).Msg("photo worker: full image upload failed")
		return
	}
	fullURL := w.store.GetURL(fullKey)

	thumbKey := fmt.Sprintf("%s/%s/thumb_%d.jpg", rt.UserID, rt.ID, i)
	if err := w.store.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), "image/jpeg"); err != nil {
		// Full image upload already succeeded: leave original pointing
		// at the resolved full URL, no thumbnail, status Failed.
		pt.Photo.Original = fullURL
		pt.Photo.ThumbnailURL = nil
		pt.Photo.Status = route.PhotoFailed
		log.Warn().Err(err).Str("route_id", rt.ID.String()).Int("index", i).Msg("photo worker: thumbnail upload failed")
		return
	}
	thumbURL := w.store.GetURL(thumbKey)

	pt.Photo.Original = fullURL
	pt.Photo.ThumbnailURL = &thumbURL
	pt.Photo.Status = route.PhotoDone
}

func (w *Worker) markFailed(pt *route.RoutePoint, original string) {
	pt.Photo.Original = original
	pt.Photo.ThumbnailURL = nil
	pt.Photo.Status = route.PhotoFailed
}

// completionPayload is the exact wire shape published to
// photos.completed.<routeId> and relayed verbatim to websocket
// subscribers.
type completionPayload struct {
	Type    string       `json:"type"`
	RouteID uuid.UUID    `json:"route_id"`
	Points  route.Points `json:"points"`
}

func (w *Worker) publishCompletion(rt *route.Route) error {
	data, err := json.Marshal(completionPayload{
		Type:    "photo_update",
		RouteID: rt.ID,
		Points:  rt.Points,
	})
	if err != nil {
		return fmt.Errorf("marshal completion payload: %w", err)
	}
	return w.queue.PublishCompletion(rt.ID, data)
}
