package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/ble"
	"github.com/SeamusWaldron/rubikal/internal/tui"
)

var playBLE bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Turn the cube interactively in the terminal",
	Long: `Open an interactive view of the cube. Keys u/d/l/r/f/b turn a face, with
shift for the inverse turn. With --ble, moves made on a connected GoCube are
queued as well.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playBLE, "ble", false, "Also take moves from a GoCube over Bluetooth")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return errors.New("play needs an interactive terminal; use 'rubikal run' instead")
	}

	source, title := "keyboard", "keyboard"
	var client *ble.Client
	if playBLE {
		c, result, err := connectGoCube(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Disconnect()
		client = c
		source, title = "ble", result.Name
	}

	j, err := startJournal(source)
	if err != nil {
		return err
	}
	defer j.close()

	history := tui.NewHistory(12)
	cube, err := newCube(rubikal.OnRotationComplete(chainHooks(j.hook(), history.Add)))
	if err != nil {
		return err
	}

	status := j.status
	if client != nil {
		client.Feed(cube)
		status = func() string {
			s := fmt.Sprintf("%s  battery %d%%", client.DeviceName(), client.Battery())
			if js := j.status(); js != "" {
				s += "  " + js
			}
			return s
		}
	}

	// Keep log lines from tearing the alt screen
	logger.SetQuiet(true)
	defer logger.SetQuiet(false)

	model := tui.New(tui.Config{
		Cube:    cube,
		History: history,
		Color:   true,
		Source:  title,
		Status:  status,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run interface: %w", err)
	}
	return nil
}

func isTerminal() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}

// connectGoCube scans for a GoCube, connects to the first one found and
// remembers it in the state file.
func connectGoCube(ctx context.Context) (*ble.Client, ble.ScanResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := ble.NewClient(logger.Logger)
	if err != nil {
		return nil, ble.ScanResult{}, fmt.Errorf("BLE not available: %w", err)
	}

	fmt.Println("Scanning for GoCube devices...")
	result, err := client.ConnectFirst(ctx)
	if err != nil {
		return nil, ble.ScanResult{}, err
	}
	fmt.Printf("Connected to %s\n", result.Name)

	if state, err := openStateFile(); err == nil {
		if err := state.SetLastDevice(result.Name, result.Address); err != nil {
			logger.Debug("failed to save device", "error", err)
		}
	}
	return client, result, nil
}
