package cmd

import (
	"context"
	"io"

	"github.com/Gobusters/ectoinject"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/routes/entities"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the index without scoring",
}

var searchNamesCmd = &cobra.Command{
	Use:   "names <name> [name...]",
	Short: "Find entities of any kind by name, alias or nickname",
	Long:  "Each argument is one name; quote names that contain spaces.",
	Args:  cobra.MinimumNArgs(1),
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
		return searchNames(ctx, cmd.OutOrStdout(), args)
	},
}

func init() {
	searchCmd.AddCommand(searchNamesCmd)
}

func searchNames(ctx context.Context, w io.Writer, values []string) error {
	ctx, searcher, err := ectoinject.GetContext[entities.Searcher](ctx)
	if err != nil {
		return err
	}

	found, err := searcher.SearchNames(ctx, values...)
	if err != nil {
		return err
	}
	return printJSON(w, entities.SearchResponse{
		Query:   found.Query,
		Total:   found.Total,
		Results: found.Records,
	})
}
