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

	"github.com/armadafleet/fleetsynth/internal/api"
	"github.com/armadafleet/fleetsynth/internal/catalog"
	"github.com/armadafleet/fleetsynth/internal/encoding"
	"github.com/armadafleet/fleetsynth/internal/generator"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/armadafleet/fleetsynth/internal/transport"
	"github.com/spf13/cobra"
)

var (
	serveHost  string
	servePort  int
	serveCache int
	serveLive  bool
	serveLast  string
	serveRate  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog and generated series over HTTP",
	Long: `Starts an HTTP API for dashboards:

  GET /health
  GET /v1/sensors[?category=Engine]       GET /v1/sensors/{id}
  GET /v1/vessels
  GET /v1/schedules                       GET /v1/schedules/{name}
  GET /v1/schedules/select?from=&to=
  GET /v1/series?from=&to=|last=&seed=&vessel=&sensors=
  GET /v1/series/summary?...
  GET /v1/stats

With --live, a looping point stream is also served on /points (WebSocket)
and /points/sse.

Examples:
  fleetsynth serve
  fleetsynth serve --port 9000 --live --last last-7-days --rate 5hz`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host address to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8787, "Port to listen on")
	serveCmd.Flags().IntVar(&serveCache, "cache", 256, "Number of seeded series to keep in memory (0 disables)")
	serveCmd.Flags().BoolVar(&serveLive, "live", false, "Also serve a looping point stream")
	serveCmd.Flags().StringVar(&serveLast, "last", "last-1-day", "Lookback window of the live stream")
	serveCmd.Flags().StringVar(&serveRate, "rate", "2hz", "Point rate of the live stream")
}

func runServe(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	schedules, err := loadSchedules()
	if err != nil {
		return err
	}

	server := api.NewServer(api.Config{
		Host:      serveHost,
		Port:      servePort,
		CacheSize: serveCache,
		Version:   Version,
	}, cat, schedules)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nReceived interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if serveLive {
		vessel, err := resolveVessel(cat, "")
		if err != nil {
			return err
		}
		gen := generator.NewGenerator(cat, schedules, generator.Config{
			Seed:   time.Now().UnixNano(),
			Vessel: vessel.ID,
		})
		if err := startLiveStream(ctx, server, vessel, gen); err != nil {
			return err
		}
	}

	printServeBanner(cmd, server.Address())

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	stats := server.Stats()
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "\nSession stats:\n")
	fmt.Fprintf(out, "   Requests:   %d\n", stats.TotalRequests)
	fmt.Fprintf(out, "   Generated:  %d\n", stats.SeriesGenerated)
	fmt.Fprintf(out, "   Cache hits: %d\n", stats.CacheHits)
	fmt.Fprintf(out, "   Errors:     %d\n", stats.TotalErrors)
	return nil
}

// startLiveStream mounts WebSocket and SSE point streams on the API router and
// feeds them from a looping streamer
func startLiveStream(ctx context.Context, server *api.Server, vessel catalog.Vessel, gen *generator.Generator) error {
	tickRate, err := parseTickRate(serveRate)
	if err != nil {
		return fmt.Errorf("invalid rate: %w", err)
	}
	dr, err := models.LastRange(time.Now(), serveLast)
	if err != nil {
		return err
	}

	source := models.Source{Type: "vessel", ID: vessel.ID, Name: vessel.Name}

	ws := transport.NewWebSocketServer(serveHost, servePort, encoding.NewJSONEncoder())
	sse := transport.NewSSEServer(serveHost, servePort, encoding.NewJSONEncoder())
	server.Handle(transport.WebSocketPath, ws.Handler())
	server.Handle(transport.SSEPath, sse.Handler())

	events := make(chan models.Event, 100)
	dispatcher := transport.NewDispatcher(events, 100)
	go transport.Pump(ctx, ws, dispatcher.Subscribe())
	go transport.Pump(ctx, sse, dispatcher.Subscribe())
	go dispatcher.Run(ctx)

	streamer := generator.NewStreamer(gen, dr, source, true)
	go func() {
		ticker := time.NewTicker(tickRate)
		defer ticker.Stop()
		if err := streamer.Stream(ctx, ticker, events); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Live stream stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		ws.Shutdown()
		sse.Shutdown()
	}()

	log.Printf("Live stream for %s on %s and %s", dr, transport.WebSocketPath, transport.SSEPath)
	return nil
}

func printServeBanner(cmd *cobra.Command, address string) {
	out := cmd.ErrOrStderr()

	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "fleetsynth API started")
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "  Series:     %s/v1/series?last=last-7-days\n", address)
	fmt.Fprintf(out, "  Summary:    %s/v1/series/summary?last=last-7-days\n", address)
	fmt.Fprintf(out, "  Sensors:    %s/v1/sensors\n", address)
	fmt.Fprintf(out, "  Schedules:  %s/v1/schedules\n", address)
	if serveLive {
		fmt.Fprintf(out, "  Live:       %s%s\n", address, transport.SSEPath)
	}
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Press Ctrl+C to stop")
	fmt.Fprintln(out, "")
}
