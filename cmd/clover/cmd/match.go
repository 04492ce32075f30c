package cmd

import (
	"github.com/Gobusters/ectoinject"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/routes/match"
)

var matchFlags struct {
	keywords   []string
	associated []int64
	perPage    int
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a name against the configured stores and print the results",
}

var matchOrgCmd = &cobra.Command{
	Use:   "org <name...>",
	Short: "Match an organization name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := joinName(args)
		if err != nil {
			return err
		}
		return runMatch(cmd, matching.NewOrg(raw, matchOptions()...))
	},
}

var matchPersonCmd = &cobra.Command{
	Use:   "person <name...>",
	Short: "Match a person name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := joinName(args)
		if err != nil {
			return err
		}
		tc, err := matching.NewPerson(raw, matchOptions()...)
		if err != nil {
			return err
		}
		return runMatch(cmd, tc)
	},
}

func init() {
	matchCmd.PersistentFlags().StringSliceVarP(&matchFlags.keywords, "keyword", "k", nil, "keyword that candidates' blurb or summary should contain (repeatable)")
	matchCmd.PersistentFlags().Int64SliceVarP(&matchFlags.associated, "associated", "a", nil, "id of an entity related to the input (repeatable)")
	matchCmd.PersistentFlags().IntVar(&matchFlags.perPage, "per-page", 0, "candidates to fetch; zero uses matching.per_page")

	matchCmd.AddCommand(matchOrgCmd)
	matchCmd.AddCommand(matchPersonCmd)
}

func matchOptions() []matching.Option {
	return match.Options(matchFlags.associated, matchFlags.keywords)
}

func runMatch(cmd *cobra.Command, tc matching.TestCase) error {
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
	ctx, matcher, err := ectoinject.GetContext[*matching.Matcher](ctx)
	if err != nil {
		return err
	}

	outcome, err := matcher.Match(ctx, tc, matchFlags.perPage)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), match.NewResponse(outcome))
}
