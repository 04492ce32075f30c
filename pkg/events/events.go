// Package events publishes the decisions of batch matching.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	clovercontext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
)

// Outcome classifies a completed match.
type Outcome string

const (
	OutcomeAutomatch   Outcome = "automatch"
	OutcomeNeedsReview Outcome = "needs_review"
	OutcomeNoMatch     Outcome = "no_match"
	OutcomeFailed      Outcome = "failed"
)

// MatchCompleted is the payload of a match.completed message.
type MatchCompleted struct {
	EventID      string    `json:"event_id"`
	EntityID     int64     `json:"entity_id"`
	Outcome      Outcome   `json:"outcome"`
	AutomatchID  *int64    `json:"automatch_id"`
	CandidateIDs []int64   `json:"candidate_ids"`
	Query        string    `json:"query,omitempty"`
	Error        string    `json:"error,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewMatchCompleted summarizes a matcher outcome for an entity.
func NewMatchCompleted(entityID int64, outcome matching.Outcome) MatchCompleted {
	event := MatchCompleted{
		EventID:      uuid.NewString(),
		EntityID:     entityID,
		Outcome:      OutcomeNoMatch,
		CandidateIDs: make([]int64, 0, outcome.Results.Len()),
		Query:        string(outcome.Query),
		OccurredAt:   time.Now().UTC(),
	}

	for _, r := range outcome.Results.ToSortedList() {
		event.CandidateIDs = append(event.CandidateIDs, r.CandidateID())
	}

	if r, ok := outcome.Automatch(); ok {
		id := r.CandidateID()
		event.Outcome = OutcomeAutomatch
		event.AutomatchID = &id
	} else if len(event.CandidateIDs) > 0 {
		event.Outcome = OutcomeNeedsReview
	}
	return event
}

// NewMatchFailed reports that matching an entity failed.
func NewMatchFailed(entityID int64, err error) MatchCompleted {
	return MatchCompleted{
		EventID:      uuid.NewString(),
		EntityID:     entityID,
		Outcome:      OutcomeFailed,
		CandidateIDs: []int64{},
		Error:        err.Error(),
		OccurredAt:   time.Now().UTC(),
	}
}

// Publisher writes messages to a topic. *kafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, messages ...kafka.OutgoingMessage) error
}

// Emitter publishes match.completed events keyed by entity id.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new Emitter.
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// Emit publishes one event.
func (e *Emitter) Emit(ctx context.Context, event MatchCompleted) error {
	err := e.publisher.Publish(ctx, kafka.OutgoingMessage{
		Key:   strconv.FormatInt(event.EntityID, 10),
		Value: event,
		Headers: map[string]string{
			kafka.HeaderEventType:     string(event.Outcome),
			kafka.HeaderCorrelationID: clovercontext.GetCorrelationID(ctx),
		},
	})
	if err != nil {
		return err
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"event_id":  event.EventID,
		"entity_id": event.EntityID,
		"outcome":   event.Outcome,
	}).Info("Emitted match.completed event")
	return nil
}
