package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply migrations up to database.migration_version, or the latest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *database.Migrator, db *database.Instance) error {
			return m.Up(db.DB.DB)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1 step)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[0], err)
			}
			steps = n
		}
		return withMigrator(cmd, func(m *database.Migrator, db *database.Instance) error {
			return m.Down(db.DB.DB, steps)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied migration version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *database.Migrator, db *database.Instance) error {
			version, dirty, err := m.Version(db.DB.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func withMigrator(cmd *cobra.Command, fn func(*database.Migrator, *database.Instance) error) error {
	cfg, log, sync, err := loadConfig()
	if err != nil {
		return err
	}
	defer sync()

	db, err := database.Open(cfg.Database.Connection(), log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Start(cmd.Context()); err != nil {
		return err
	}
	return fn(database.NewMigrator(cfg.Database.Migration(), log), db)
}
