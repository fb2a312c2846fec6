package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubikal/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n%s\n", configPath, data)
		return nil
	},
}

var configSetDBCmd = &cobra.Command{
	Use:   "set-db <path>",
	Short: "Set the database path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		stored, err := config.Load(configPath)
		if err != nil {
			return err
		}
		stored.DBPath = path
		if err := stored.Save(configPath); err != nil {
			return err
		}
		fmt.Printf("Database path set to %s\n", path)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Default().Save(configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote defaults to %s\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetDBCmd)
	configCmd.AddCommand(configResetCmd)
	rootCmd.AddCommand(configCmd)
}
