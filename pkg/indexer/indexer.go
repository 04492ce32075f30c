// Package indexer projects stored entities into the search index.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/search"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const DefaultBatchSize = 500

// Source pages through stored entities. *entity.Repository implements it.
type Source interface {
	ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
	FetchByIDs(ctx context.Context, ids []int64) ([]matching.Record, error)
}

// Sink receives search documents. *search.OpenSearch and *search.Memory
// implement it.
type Sink interface {
	Index(ctx context.Context, doc search.Document) error
}

// Indexer writes entity records into the search index.
type Indexer struct {
	source    Source
	sink      Sink
	batchSize int
	logger    ectologger.Logger
}

// New creates an Indexer. A non-positive batchSize uses DefaultBatchSize.
func New(source Source, sink Sink, batchSize int, logger ectologger.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Indexer{
		source:    source,
		sink:      sink,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Document builds the searchable projection of a record.
func Document(rec matching.Record) search.Document {
	return search.Document{
		ID:      rec.ID,
		Kind:    rec.Kind.String(),
		Name:    rec.Name,
		Aliases: rec.Aliases,
		Nick:    rec.Person.Nick,
	}
}

// IndexRecord writes one record.
func (i *Indexer) IndexRecord(ctx context.Context, rec matching.Record) error {
	if err := i.sink.Index(ctx, Document(rec)); err != nil {
		return fmt.Errorf("%w: indexing entity %d: %w", matching.ErrUnavailable, rec.ID, err)
	}
	return nil
}

// IndexEntity loads and writes one stored entity.
func (i *Indexer) IndexEntity(ctx context.Context, id int64) error {
	records, err := i.source.FetchByIDs(ctx, []int64{id})
	if err != nil {
		return fmt.Errorf("%w: loading entity %d: %w", matching.ErrUnavailable, id, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("entity %d: %w", id, matching.ErrNotFound)
	}
	return i.IndexRecord(ctx, records[0])
}

// Run reindexes every live entity in id order and returns how many documents
// were written. It stops at the first failure.
func (i *Indexer) Run(ctx context.Context) (indexed int, err error) {
	ctx, span := tracing.StartSpan(ctx, "indexer.Indexer.Run")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	start := time.Now()
	log := i.logger.WithContext(ctx)

	var after int64
	for {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		ids, err := i.source.ListIDs(ctx, after, i.batchSize)
		if err != nil {
			return indexed, fmt.Errorf("%w: listing entities after %d: %w", matching.ErrUnavailable, after, err)
		}
		if len(ids) == 0 {
			break
		}

		records, err := i.source.FetchByIDs(ctx, ids)
		if err != nil {
			return indexed, fmt.Errorf("%w: loading entities: %w", matching.ErrUnavailable, err)
		}
		for _, rec := range records {
			if err := i.IndexRecord(ctx, rec); err != nil {
				return indexed, err
			}
			indexed++
		}

		after = ids[len(ids)-1]
		log.WithFields(map[string]any{"indexed": indexed, "after_id": after}).Debug("Indexed batch")

		if len(ids) < i.batchSize {
			break
		}
	}

	log.WithFields(map[string]any{
		"indexed":     indexed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Reindex complete")
	return indexed, nil
}
