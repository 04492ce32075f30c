package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/names"
	"github.com/Ramsey-B/clover/pkg/query"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the search expression built for a name",
}

var queryOrgCmd = &cobra.Command{
	Use:   "org <name...>",
	Short: "Search expression for an organization name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := joinName(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), query.Org(names.ParseOrg(raw)))
		return nil
	},
}

var queryPersonCmd = &cobra.Command{
	Use:   "person <name...>",
	Short: "Search expression for a person name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := joinName(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), query.Person(names.ParsePerson(raw), raw))
		return nil
	},
}

var queryNamesCmd = &cobra.Command{
	Use:   "names <name> [name...]",
	Short: "Search expression matching any of several names",
	Long:  "Each argument is one name; quote names that contain spaces.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), query.Names(args...))
		return nil
	},
}

func init() {
	queryCmd.AddCommand(queryOrgCmd)
	queryCmd.AddCommand(queryPersonCmd)
	queryCmd.AddCommand(queryNamesCmd)
}
