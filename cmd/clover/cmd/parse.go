package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/routes/names"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a name into its components",
}

var parseOrgCmd = &cobra.Command{
	Use:   "org <name...>",
	Short: "Parse an organization name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := joinName(args)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), names.NewOrgResponse(raw))
	},
}

var parsePersonCmd = &cobra.Command{
	Use:   "person <name...>",
	Short: "Parse a person name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := joinName(args)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), names.NewPersonResponse(raw))
	},
}

func init() {
	parseCmd.AddCommand(parseOrgCmd)
	parseCmd.AddCommand(parsePersonCmd)
}
