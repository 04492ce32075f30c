// Package worker runs batch deduplication of existing entities.
package worker

import (
	"context"
	"errors"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	clovercontext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/metrics"
)

// DedupeRequest is the payload of a dedupe.requested message.
type DedupeRequest struct {
	EntityID int64    `json:"entity_id"`
	Keywords []string `json:"keywords,omitempty"`
}

// EntityMatcher matches a stored entity. *matching.Matcher implements it.
type EntityMatcher interface {
	MatchEntity(ctx context.Context, id int64, opts ...matching.Option) (matching.Outcome, error)
}

// EventEmitter publishes match results. *events.Emitter implements it.
type EventEmitter interface {
	Emit(ctx context.Context, event events.MatchCompleted) error
}

// Dedupe matches each requested entity against the others and emits the
// result.
type Dedupe struct {
	matcher         EntityMatcher
	emitter         EventEmitter
	defaultKeywords []string
	logger          ectologger.Logger
}

// NewDedupe creates a dedupe worker. defaultKeywords apply to requests that
// carry none.
func NewDedupe(matcher EntityMatcher, emitter EventEmitter, defaultKeywords []string, logger ectologger.Logger) *Dedupe {
	return &Dedupe{
		matcher:         matcher,
		emitter:         emitter,
		defaultKeywords: defaultKeywords,
		logger:          logger,
	}
}

// Handle is the kafka.MessageHandler for dedupe.requested. A returned error
// leaves the message uncommitted. Malformed requests and matching failures
// are reported and committed, except when the search or record store is
// unavailable, which is retried.
func (d *Dedupe) Handle(ctx context.Context, msg *kafka.IncomingMessage) error {
	correlationID := msg.Headers[kafka.HeaderCorrelationID]
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	ctx = clovercontext.SetCorrelationID(ctx, correlationID)

	log := d.logger.WithContext(ctx).WithFields(map[string]any{
		"correlation_id": correlationID,
		"offset":         msg.Offset,
	})

	var req DedupeRequest
	if err := msg.Decode(&req); err != nil || req.EntityID <= 0 {
		if err == nil {
			err = errors.New("entity_id must be positive")
		}
		log.WithError(err).Warn("Dropping malformed dedupe request")
		metrics.RecordDedupeJob("invalid")
		return nil
	}

	log = log.WithFields(map[string]any{"entity_id": req.EntityID})

	keywords := req.Keywords
	if len(keywords) == 0 {
		keywords = d.defaultKeywords
	}

	outcome, err := d.matcher.MatchEntity(ctx, req.EntityID, matching.WithKeywords(keywords...))
	if errors.Is(err, matching.ErrUnavailable) {
		log.WithError(err).Warn("Dependency unavailable, leaving dedupe request uncommitted")
		metrics.RecordDedupeJob("retry")
		return err
	}
	if err != nil {
		log.WithError(err).Error("Failed to dedupe entity")
		metrics.RecordDedupeJob(string(events.OutcomeFailed))
		return d.emitter.Emit(ctx, events.NewMatchFailed(req.EntityID, err))
	}

	event := events.NewMatchCompleted(req.EntityID, outcome)
	if err := d.emitter.Emit(ctx, event); err != nil {
		log.WithError(err).Error("Failed to emit match result")
		return err
	}

	metrics.RecordDedupeJob(string(event.Outcome))
	return nil
}
