package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/armadafleet/fleetsynth/internal/encoding"
	"github.com/armadafleet/fleetsynth/internal/generator"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/armadafleet/fleetsynth/internal/plugin"
	"github.com/armadafleet/fleetsynth/internal/recorder"
	"github.com/armadafleet/fleetsynth/internal/transport"
	"github.com/spf13/cobra"
)

var (
	streamHost      string
	streamPort      int
	streamFrom      string
	streamTo        string
	streamLast      string
	streamRate      string
	streamSeed      int64
	streamVessel    string
	streamSensors   string
	streamFormat    string
	streamLoop      bool
	streamOut       string
	streamTransform string
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream a series point by point to live clients",
	Long: `Generates a series and emits one point per tick over WebSocket, SSE and UDP.
With --loop a fresh series is generated every time the last one has been sent.

Ports: WebSocket on --port, SSE on --port+1, UDP on --port+2.

Examples:
  fleetsynth stream --last last-1-day --rate 10hz --loop
  fleetsynth stream --from 2024-01-01 --to 2024-01-08 --format protobuf --out week.ndjson`,
	RunE: runStream,
}

func init() {
	streamCmd.Flags().StringVar(&streamHost, "host", "127.0.0.1", "Host to bind to")
	streamCmd.Flags().IntVar(&streamPort, "port", 8787, "WebSocket port (SSE and UDP use the next two)")
	streamCmd.Flags().StringVar(&streamFrom, "from", "", "Range start (YYYY-MM-DD or ISO-8601 timestamp)")
	streamCmd.Flags().StringVar(&streamTo, "to", "", "Range end (YYYY-MM-DD or ISO-8601 timestamp)")
	streamCmd.Flags().StringVar(&streamLast, "last", "", "Lookback window (preset or ISO-8601 duration)")
	streamCmd.Flags().StringVar(&streamRate, "rate", "2hz", "Points per second (e.g. 10hz or 250ms)")
	streamCmd.Flags().Int64Var(&streamSeed, "seed", time.Now().UnixNano(), "Random seed for deterministic output")
	streamCmd.Flags().StringVar(&streamVessel, "vessel", "", "Vessel ID (default: first vessel in the catalog)")
	streamCmd.Flags().StringVar(&streamSensors, "sensors", "", "Comma-separated sensor IDs (default: all)")
	streamCmd.Flags().StringVar(&streamFormat, "format", "json", "Wire format: json|protobuf")
	streamCmd.Flags().BoolVar(&streamLoop, "loop", false, "Keep generating fresh series")
	streamCmd.Flags().StringVar(&streamOut, "out", "", "Record events to an NDJSON file")
	streamCmd.Flags().StringVar(&streamTransform, "transform", "", "WASM module that rewrites each point")
}

func runStream(cmd *cobra.Command, args []string) error {
	format, err := encoding.ParseFormat(streamFormat)
	if err != nil {
		return err
	}

	tickRate, err := parseTickRate(streamRate)
	if err != nil {
		return fmt.Errorf("invalid rate: %w", err)
	}

	if streamFrom == "" && streamTo == "" && streamLast == "" {
		streamLast = "last-1-day"
	}
	dr, err := resolveRange(streamFrom, streamTo, streamLast, time.Now())
	if err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	vessel, err := resolveVessel(cat, streamVessel)
	if err != nil {
		return err
	}
	cat, err = selectCatalog(cat, streamSensors)
	if err != nil {
		return err
	}

	schedules, err := loadSchedules()
	if err != nil {
		return err
	}

	gen := generator.NewGenerator(cat, schedules, generator.Config{Seed: streamSeed, Vessel: vessel.ID})
	source := models.Source{Type: "vessel", ID: vessel.ID, Name: vessel.Name}
	streamer := generator.NewStreamer(gen, dr, source, streamLoop)

	var engine *plugin.Engine
	if streamTransform != "" {
		engine, err = plugin.NewEngine(context.Background(), streamTransform)
		if err != nil {
			return fmt.Errorf("failed to load transform: %w", err)
		}
		defer engine.Close(context.Background())
	}

	encoder := encoding.NewEncoder(format)
	wsServer := transport.NewWebSocketServer(streamHost, streamPort, encoder)
	// SSE is text only
	sseServer := transport.NewSSEServer(streamHost, streamPort+1, encoding.NewJSONEncoder())
	udpServer := transport.NewUDPServer(streamHost, streamPort+2, encoder)
	broadcasters := []transport.Broadcaster{wsServer, sseServer, udpServer}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Println("Received interrupt signal, shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	for _, b := range broadcasters {
		go func(b transport.Broadcaster) {
			if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("%s: %v", b.Address(), err)
				cancel()
			}
		}(b)
	}

	generated := make(chan models.Event, 100)
	final := make(chan models.Event, 100)
	dispatcher := transport.NewDispatcher(final, 100)

	for _, b := range broadcasters {
		go transport.Pump(ctx, b, dispatcher.Subscribe())
	}

	var recDone chan struct{}
	if streamOut != "" {
		rec, err := recorder.NewRecorder(streamOut)
		if err != nil {
			return err
		}
		recEvents := dispatcher.Subscribe()
		recDone = make(chan struct{})
		go func() {
			defer close(recDone)
			if err := rec.RecordFromChannel(ctx, recEvents, nil); err != nil {
				log.Printf("Recording error: %v", err)
			}
			log.Printf("Recorded %d events to %s", rec.Count(), rec.Path())
		}()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "fleetsynth stream started\n\n")
	fmt.Fprintf(out, "Range:      %s\n", dr)
	if sched, err := gen.SelectSchedule(dr); err == nil {
		fmt.Fprintf(out, "Schedule:   %s\n", sched.Name)
	}
	fmt.Fprintf(out, "Vessel:     %s\n", vessel.ID)
	fmt.Fprintf(out, "Rate:       %s per point\n", tickRate)
	fmt.Fprintf(out, "Format:     %s\n", format)
	fmt.Fprintf(out, "WebSocket:  %s\n", wsServer.Address())
	fmt.Fprintf(out, "SSE:        %s\n", sseServer.Address())
	fmt.Fprintf(out, "UDP:        %s\n", udpServer.Address())
	if streamOut != "" {
		fmt.Fprintf(out, "Recording:  %s\n", streamOut)
	}
	fmt.Fprintln(out)

	go dispatcher.Run(ctx)

	// optional transform stage between generator and fan-out
	go func() {
		defer close(final)
		for event := range generated {
			if engine != nil {
				point, err := engine.TransformPoint(ctx, event.Point)
				if err != nil {
					log.Printf("Transform error: %v", err)
					continue
				}
				event.Point = point
			}
			select {
			case final <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	err = streamer.Stream(ctx, ticker, generated)
	close(generated)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stream error: %w", err)
	}

	if recDone != nil {
		<-recDone
	}
	cancel()

	fmt.Fprintf(out, "\nStreamed %d points (%d dropped deliveries)\n", streamer.Sequence(), dispatcher.Dropped())
	return nil
}
