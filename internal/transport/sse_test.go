package transport

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/armadafleet/fleetsynth/internal/encoding"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSSEServer_Broadcast(t *testing.T) {
	server := NewSSEServer("127.0.0.1", 0, encoding.NewJSONEncoder())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+SSEPath, nil)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("wrong content type: %s", ct)
	}

	waitFor(t, "client registration", func() bool { return server.ClientCount() == 1 })

	if err := server.Broadcast(pointEvent(3)); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		lines = append(lines, strings.TrimSpace(line))
	}

	if lines[0] != "event: point" {
		t.Errorf("expected event line, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "data: ") || !strings.Contains(lines[1], `"engine_main_temp"`) {
		t.Errorf("expected point data, got %q", lines[1])
	}
}

func TestSSEServer_ClientLeaves(t *testing.T) {
	server := NewSSEServer("127.0.0.1", 0, encoding.NewJSONEncoder())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+SSEPath, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	waitFor(t, "client registration", func() bool { return server.ClientCount() == 1 })

	cancel()
	resp.Body.Close()

	waitFor(t, "client removal", func() bool { return server.ClientCount() == 0 })
}

func TestSSEServer_Address(t *testing.T) {
	server := NewSSEServer("127.0.0.1", 8080, encoding.NewJSONEncoder())
	if addr := server.Address(); addr != "http://127.0.0.1:8080/points/sse" {
		t.Errorf("wrong address: %s", addr)
	}
}

func TestSSEServer_PortConflict(t *testing.T) {
	server1 := NewSSEServer("127.0.0.1", 19879, encoding.NewJSONEncoder())
	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()

	go server1.Start(ctx1)
	time.Sleep(100 * time.Millisecond)

	server2 := NewSSEServer("127.0.0.1", 19879, encoding.NewJSONEncoder())
	ctx2, cancel2 := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel2()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server2.Start(ctx2)
	}()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("expected error for port conflict")
		}
	case <-time.After(300 * time.Millisecond):
		t.Error("should fail fast")
	}
}
