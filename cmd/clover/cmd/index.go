package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/indexer"
)

var indexFlags struct {
	batchSize int
	entityID  int64
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the search index from Postgres",
	Long:  "Writes every live entity, with its aliases and nickname, into the OpenSearch index. With --entity only that entity is written.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := newStack(ctx)
		if err != nil {
			return err
		}
		defer s.stop()

		if err := s.start(ctx); err != nil {
			return err
		}

		ctx, err = s.bind(ctx)
		if err != nil {
			return err
		}
		return reindex(ctx, cmd.OutOrStdout(), indexFlags.batchSize, indexFlags.entityID)
	},
}

func init() {
	indexCmd.Flags().IntVar(&indexFlags.batchSize, "batch-size", indexer.DefaultBatchSize, "entities loaded per page")
	indexCmd.Flags().Int64Var(&indexFlags.entityID, "entity", 0, "index only this entity id")
}

// reindex writes entityID, or every entity when it is zero.
func reindex(ctx context.Context, w io.Writer, batchSize int, entityID int64) error {
	ctx, source, err := ectoinject.GetContext[indexer.Source](ctx)
	if err != nil {
		return err
	}
	ctx, sink, err := ectoinject.GetContext[indexer.Sink](ctx)
	if err != nil {
		return err
	}
	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)

	idx := indexer.New(source, sink, batchSize, logger)
	if entityID > 0 {
		if err := idx.IndexEntity(ctx, entityID); err != nil {
			return err
		}
		fmt.Fprintf(w, "indexed entity %d\n", entityID)
		return nil
	}

	n, err := idx.Run(ctx)
	if err != nil {
		return fmt.Errorf("reindex stopped after %d entities: %w", n, err)
	}
	fmt.Fprintf(w, "indexed %d entities\n", n)
	return nil
}
