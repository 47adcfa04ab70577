package transport

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/armadafleet/fleetsynth/internal/encoding"
	"github.com/armadafleet/fleetsynth/internal/models"
	"github.com/gorilla/websocket"
)

// WebSocketPath is where point streams are served
const WebSocketPath = "/points"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards run on other local ports
	},
}

// WebSocketServer broadcasts point events to WebSocket clients
type WebSocketServer struct {
	host        string
	port        int
	encoder     encoding.Encoder
	messageType int
	clients     map[*websocket.Conn]*sync.Mutex
	mu          sync.RWMutex
	server      *http.Server
}

// NewWebSocketServer creates a WebSocket server. JSON goes out as text frames,
// anything else as binary frames.
func NewWebSocketServer(host string, port int, encoder encoding.Encoder) *WebSocketServer {
	messageType := websocket.BinaryMessage
	if encoder.ContentType() == "application/json" {
		messageType = websocket.TextMessage
	}
	return &WebSocketServer{
		host:        host,
		port:        port,
		encoder:     encoder,
		messageType: messageType,
		clients:     make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Handler returns the routes of the server so they can be mounted elsewhere
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, s.handleWebSocket)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// Start serves until ctx is cancelled
func (s *WebSocketServer) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.host, s.port),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("WebSocket server listening on %s", s.Address())
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("websocket server failed: %w", err)
		}
		return nil
	}
}

func (s *WebSocketServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "fleetsynth point stream\n\n")
	fmt.Fprintf(w, "WebSocket endpoint: %s\n", s.Address())
	fmt.Fprintf(w, "Connected clients: %d\n", s.ClientCount())
}

func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = &sync.Mutex{}
	count := len(s.clients)
	s.mu.Unlock()

	log.Printf("WebSocket client connected from %s (total: %d)", r.RemoteAddr, count)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		count := len(s.clients)
		s.mu.Unlock()

		conn.Close()
		log.Printf("WebSocket client disconnected (total: %d)", count)
	}()

	// drain reads so close frames and pings are handled
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends an event to all connected clients
func (s *WebSocketServer) Broadcast(event models.Event) error {
	if s.ClientCount() == 0 {
		return nil
	}

	data, err := s.encoder.Encode(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn, writeMu := range s.clients {
		writeMu.Lock()
		err := conn.WriteMessage(s.messageType, data)
		writeMu.Unlock()
		if err != nil {
			// the read loop removes the client
			log.Printf("Failed to send to WebSocket client: %v", err)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients
func (s *WebSocketServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Shutdown closes every client and stops the HTTP server
func (s *WebSocketServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]*sync.Mutex)
	s.mu.Unlock()

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Address returns the WebSocket URL
func (s *WebSocketServer) Address() string {
	return fmt.Sprintf("ws://%s:%d%s", s.host, s.port, WebSocketPath)
}
