package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubikal/internal/ble"
)

var scanTimeout time.Duration

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List nearby GoCube devices",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", ble.DefaultScanTimeout, "How long to listen for devices")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	client, err := ble.NewClient(logger.Logger)
	if err != nil {
		return fmt.Errorf("BLE not available: %w", err)
	}

	fmt.Println("Scanning for GoCube devices...")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := client.Scan(ctx, scanTimeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No devices found.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("  %-20s %s  RSSI %d\n", r.Name, r.Address, r.RSSI)
	}
	return nil
}
