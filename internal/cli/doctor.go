package cli

import (
	"fmt"
	"net"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment and print connection info",
	Long:  `Validates the catalog and schedules, checks port availability, and provides connection examples.`,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "fleetsynth environment check")
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Go Version:        %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch:           %s/%s\n\n", runtime.GOOS, runtime.GOARCH)

	problems := 0

	cat, err := loadCatalog()
	if err == nil {
		err = cat.Validate()
	}
	if err != nil {
		fmt.Fprintf(out, "[FAIL] Sensor catalog: %v\n", err)
		problems++
	} else {
		source := "built-in"
		if globalOpts.CatalogPath != "" {
			source = globalOpts.CatalogPath
		}
		fmt.Fprintf(out, "[ OK ] Sensor catalog (%s): %d sensors, %d vessels\n", source, len(cat.Sensors), len(cat.Vessels))
	}

	registry, err := loadSchedules()
	if err != nil {
		fmt.Fprintf(out, "[FAIL] Schedules: %v\n", err)
		problems++
	} else {
		var names []string
		for _, s := range registry.List() {
			names = append(names, s.Name)
		}
		fmt.Fprintf(out, "[ OK ] Schedules: %v\n", names)
		if dir := getSchedulesDir(); dir != "" {
			fmt.Fprintf(out, "       overrides from %s\n", dir)
		}
	}

	if _, err := os.Stat(globalOpts.EnvFile); err == nil {
		fmt.Fprintf(out, "[ OK ] Env file found: %s\n", globalOpts.EnvFile)
	} else {
		fmt.Fprintf(out, "[ -- ] No env file at %s (defaults in use)\n", globalOpts.EnvFile)
	}
	fmt.Fprintln(out)

	defaultPort := 8787
	for i, name := range []string{"WebSocket/API", "SSE", "UDP"} {
		port := defaultPort + i
		available := isPortAvailable(port)
		if name == "UDP" {
			available = isUDPPortAvailable(port)
		}
		if available {
			fmt.Fprintf(out, "[ OK ] %s port %d is available\n", name, port)
		} else {
			fmt.Fprintf(out, "[WARN] %s port %d is in use, use --port to pick another\n", name, port)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Connection Examples:")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "JavaScript:")
	fmt.Fprintln(out, "  const ws = new WebSocket('ws://localhost:8787/points');")
	fmt.Fprintln(out, "  ws.onmessage = (e) => console.log(JSON.parse(e.data).point);")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "curl (SSE):")
	fmt.Fprintln(out, "  curl -N http://localhost:8788/points/sse")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "curl (API):")
	fmt.Fprintln(out, "  curl 'http://localhost:8787/v1/series?last=last-7-days&seed=42'")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Go:")
	fmt.Fprintln(out, "  conn, _, err := websocket.DefaultDialer.Dial(\"ws://localhost:8787/points\", nil)")
	fmt.Fprintln(out, "  for {")
	fmt.Fprintln(out, "    _, message, err := conn.ReadMessage()")
	fmt.Fprintln(out, "    var event models.Event")
	fmt.Fprintln(out, "    json.Unmarshal(message, &event)")
	fmt.Fprintln(out, "  }")
	fmt.Fprintln(out)

	if problems > 0 {
		return fmt.Errorf("%d check(s) failed", problems)
	}
	fmt.Fprintln(out, "Environment check complete")
	return nil
}

func isPortAvailable(port int) bool {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

func isUDPPortAvailable(port int) bool {
	conn, err := net.ListenPacket("udp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
