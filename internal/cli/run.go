package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/render"
)

var (
	runRealtime bool
	runTrace    bool
)

var runCmd = &cobra.Command{
	Use:   "run <moves>...",
	Short: "Animate a move sequence without a display",
	Long: `Queue a move sequence and drive the engine until it is idle, then print
the resulting cube.

Moves are face tokens (R, Ri, L, Li, U, Ui, D, Di, F, Fi, B, Bi) separated by
spaces, or slice rotations such as x1:up. The whole sequence is rejected if
any token is invalid.`,
	Example: `  rubikal run R U Ri Ui
  rubikal run "F R U Ri Ui Fi" --trace`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runRealtime, "realtime", false, "Tick at the configured frame interval instead of as fast as possible")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "Print each rotation as it completes")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	rotations, err := rubikal.ParseMoves(strings.Join(args, " "))
	if err != nil {
		return err
	}

	j, err := startJournal("script")
	if err != nil {
		return err
	}
	defer j.close()

	out := cmd.OutOrStdout()
	var trace func(rubikal.RotationEvent)
	if runTrace {
		trace = func(ev rubikal.RotationEvent) {
			fmt.Fprintf(out, "%3d  %-8s ticks %d-%d\n", ev.Seq, ev.Rotation, ev.StartTick, ev.CompleteTick)
		}
	}

	cube, err := newCube(rubikal.OnRotationComplete(chainHooks(j.hook(), trace)))
	if err != nil {
		return err
	}

	for _, r := range rotations {
		if err := cube.Rotate(r); err != nil {
			return err
		}
	}

	start := time.Now()
	if runRealtime {
		ticker := time.NewTicker(cube.FrameInterval())
		for cube.Busy() {
			<-ticker.C
			cube.Tick()
		}
		ticker.Stop()
	} else {
		perRotation := 1 + cube.PauseTicks() + cube.UpdatesPerRotation()
		if _, err := cube.RunUntilIdle(len(rotations)*perRotation + 1); err != nil {
			return err
		}
	}

	logger.Debug("sequence finished", "rotations", len(rotations), "ticks", cube.Ticks(), "elapsed", time.Since(start))

	renderer := render.Renderer{Color: colorOutput(out)}
	fmt.Fprintln(out, renderer.Snapshot(cube.Snapshot()))
	fmt.Fprintf(out, "\n%d rotations in %d ticks\n", len(rotations), cube.Ticks())
	return nil
}

// colorOutput reports whether w is a terminal.
func colorOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
