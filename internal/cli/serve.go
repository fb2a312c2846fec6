package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/server"
)

var (
	serveAddr string
	serveBLE  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream the cube to websocket viewers",
	Long: `Run the engine at its frame interval and broadcast every frame on /ws.
Viewers send {"move":"R"} or {"moves":"R U Ri"} to queue rotations.
GET /net returns the current cube as text.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
	serveCmd.Flags().BoolVar(&serveBLE, "ble", false, "Also take moves from a GoCube over Bluetooth")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j, err := startJournal("websocket")
	if err != nil {
		return err
	}
	defer j.close()

	cube, err := newCube(rubikal.OnRotationComplete(j.hook()))
	if err != nil {
		return err
	}

	if serveBLE {
		client, _, err := connectGoCube(ctx)
		if err != nil {
			return err
		}
		defer client.Disconnect()
		client.Feed(cube)
	}

	srv := server.New(cube, logger.Logger)
	httpServer := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go srv.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	fmt.Printf("Serving on http://%s (websocket /ws, text /net). Press Ctrl+C to stop.\n", serveAddr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}
	return nil
}
