package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/clover/pkg/tracing"
)

const relatedCypher = `
	MATCH (e:Entity)-[r]-(o:Entity)
	WHERE e.id IN $ids AND r.deleted_at IS NULL
	RETURN e.id AS id, collect(DISTINCT o.id) AS related
`

// Reader runs a read transaction. *Client implements it.
type Reader interface {
	ExecuteRead(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error)
}

// Relations looks up the entities each entity is directly connected to.
type Relations struct {
	reader Reader
	logger ectologger.Logger
}

// NewRelations creates a relationship source over the graph.
func NewRelations(reader Reader, logger ectologger.Logger) *Relations {
	return &Relations{
		reader: reader,
		logger: logger,
	}
}

// RelatedIDs returns, per requested id, the sorted ids of its neighbours.
// Ids without neighbours are absent from the map.
func (r *Relations) RelatedIDs(ctx context.Context, ids []int64) (map[int64][]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Relations.RelatedIDs")
	defer span.End()

	if len(ids) == 0 {
		return map[int64][]int64{}, nil
	}

	result, err := r.reader.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, relatedCypher, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return relatedFromRecords(records)
	})
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"entity_count": len(ids),
		}).Error("Failed to load related entities from graph")
		return nil, fmt.Errorf("failed to load related entities: %w", err)
	}

	return result.(map[int64][]int64), nil
}

func relatedFromRecords(records []*neo4j.Record) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(records))
	for _, rec := range records {
		rawID, ok := rec.Get("id")
		if !ok {
			return nil, fmt.Errorf("graph record has no id column")
		}
		id, ok := rawID.(int64)
		if !ok {
			return nil, fmt.Errorf("graph entity id %v is %T, not an integer", rawID, rawID)
		}

		rawRelated, _ := rec.Get("related")
		list, _ := rawRelated.([]any)
		for _, v := range list {
			other, ok := v.(int64)
			if !ok || other == id || slices.Contains(out[id], other) {
				continue
			}
			out[id] = append(out[id], other)
		}
		slices.Sort(out[id])
	}
	return out, nil
}
