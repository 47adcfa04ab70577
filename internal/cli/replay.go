package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/armadafleet/fleetsynth/internal/encoding"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/armadafleet/fleetsynth/internal/recorder"
	"github.com/armadafleet/fleetsynth/internal/transport"
	"github.com/spf13/cobra"
)

var (
	replayIn     string
	replaySpeed  float64
	replayLoop   bool
	replayHost   string
	replayPort   int
	replayFormat string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded stream",
	Long: `Replays events from an NDJSON file written by 'stream --out', keeping the
original spacing between events.

Examples:
  fleetsynth replay --in week.ndjson
  fleetsynth replay --in week.ndjson --speed 4 --loop --format protobuf`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayIn, "in", "", "Input file to replay (required)")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayLoop, "loop", false, "Loop playback continuously")
	replayCmd.Flags().StringVar(&replayHost, "host", "127.0.0.1", "Host to bind to")
	replayCmd.Flags().IntVar(&replayPort, "port", 8787, "WebSocket port")
	replayCmd.Flags().StringVar(&replayFormat, "format", "json", "Wire format: json|protobuf")
	replayCmd.MarkFlagRequired("in")
}

func runReplay(cmd *cobra.Command, args []string) error {
	format, err := encoding.ParseFormat(replayFormat)
	if err != nil {
		return err
	}
	if replaySpeed <= 0 {
		return fmt.Errorf("--speed must be positive")
	}

	rep := recorder.NewReplayer(replayIn, replaySpeed, replayLoop)

	count, err := rep.CountEvents()
	if err != nil {
		return fmt.Errorf("failed to read recording: %w", err)
	}
	first, err := rep.FirstEvent()
	if err != nil {
		return err
	}

	events := make(chan models.Event, 100)
	wsServer := transport.NewWebSocketServer(replayHost, replayPort, encoding.NewEncoder(format))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Println("Received interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := wsServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("WebSocket server error: %v", err)
			cancel()
		}
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Replay started\n\n")
	fmt.Fprintf(out, "File:       %s\n", replayIn)
	fmt.Fprintf(out, "Events:     %d\n", count)
	fmt.Fprintf(out, "Vessel:     %s\n", first.Source.ID)
	fmt.Fprintf(out, "Schedule:   %s (seed %d)\n", first.Session.Schedule, first.Session.Seed)
	fmt.Fprintf(out, "Speed:      %.1fx\n", replaySpeed)
	fmt.Fprintf(out, "Loop:       %v\n", replayLoop)
	fmt.Fprintf(out, "WebSocket:  %s\n\n", wsServer.Address())

	go func() {
		if err := transport.Pump(ctx, wsServer, events); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Broadcast error: %v", err)
		}
	}()

	err = rep.Replay(ctx, events)
	close(events)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("replay error: %w", err)
	}

	fmt.Fprintln(out, "\nReplay complete")
	return nil
}
