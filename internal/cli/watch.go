package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/render"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print moves from a GoCube as the engine animates them",
	Long: `Connect to the first GoCube found and print every move it reports,
followed by each rotation as the engine completes it. The journal records
the session unless --no-journal is given.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, result, err := connectGoCube(ctx)
	if err != nil {
		return err
	}
	defer func() {
		fmt.Println("\nDisconnecting...")
		client.Disconnect()
	}()

	j, err := startJournal("ble")
	if err != nil {
		return err
	}
	defer j.close()

	var cube *rubikal.Cube
	cube, err = newCube(rubikal.OnRotationComplete(chainHooks(j.hook(), func(ev rubikal.RotationEvent) {
		// The hook runs outside the cube's lock
		solved := render.Build(cube.Snapshot().Settled()).Solved()
		fmt.Printf("[%s] DONE: %-8s | ticks %d-%d | pending %d | solved %v\n",
			time.Now().Format("15:04:05.000"), ev.Rotation, ev.StartTick, ev.CompleteTick,
			len(cube.Pending()), solved)
	})))
	if err != nil {
		return err
	}

	client.OnToken(func(token string) {
		fmt.Printf("[%s] MOVE: %s\n", time.Now().Format("15:04:05.000"), token)
	})
	client.Feed(cube)

	fmt.Printf("Watching %s. Make moves on the cube; press Ctrl+C to exit.\n", result.Name)
	fmt.Println(strings.Repeat("-", 70))

	ticker := time.NewTicker(cube.FrameInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cube.Tick()
		}
	}
}
