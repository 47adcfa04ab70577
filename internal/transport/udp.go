package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/armadafleet/fleetsynth/internal/encoding"
	"github.com/armadafleet/fleetsynth/internal/models"
)

// Control datagrams understood by the UDP server. Any other payload also
// registers the sender.
const (
	udpSubscribe   = "subscribe"
	udpUnsubscribe = "unsubscribe"
)

// maxDatagram is the largest payload the server will send
const maxDatagram = 65507

// UDPServer sends each point event as one datagram to registered clients
type UDPServer struct {
	host    string
	port    int
	encoder encoding.Encoder
	conn    *net.UDPConn
	clients map[string]*net.UDPAddr
	mu      sync.RWMutex
}

// NewUDPServer creates a new UDP server
func NewUDPServer(host string, port int, encoder encoding.Encoder) *UDPServer {
	return &UDPServer{
		host:    host,
		port:    port,
		encoder: encoder,
		clients: make(map[string]*net.UDPAddr),
	}
}

// Start listens until ctx is cancelled
func (s *UDPServer) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", s.host, s.port))
	if err != nil {
		return fmt.Errorf("failed to resolve address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	log.Printf("UDP server listening on %s", s.Address())

	go s.readLoop(ctx, conn)

	<-ctx.Done()
	return s.Shutdown()
}

// readLoop handles registration datagrams
func (s *UDPServer) readLoop(ctx context.Context, conn *net.UDPConn) {
	buf := make([]byte, 1024)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		s.handleMessage(strings.TrimSpace(string(buf[:n])), addr)
	}
}

func (s *UDPServer) handleMessage(msg string, addr *net.UDPAddr) {
	key := addr.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg {
	case udpSubscribe:
		s.clients[key] = addr
		log.Printf("UDP client subscribed: %s (total: %d)", key, len(s.clients))
	case udpUnsubscribe:
		delete(s.clients, key)
		log.Printf("UDP client unsubscribed: %s (total: %d)", key, len(s.clients))
	default:
		if _, exists := s.clients[key]; !exists {
			s.clients[key] = addr
			log.Printf("UDP client registered: %s (total: %d)", key, len(s.clients))
		}
	}
}

// Broadcast sends an event to all registered clients
func (s *UDPServer) Broadcast(event models.Event) error {
	if s.ClientCount() == 0 {
		return nil
	}

	data, err := s.encoder.Encode(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if len(data) > maxDatagram {
		return fmt.Errorf("encoded event is %d bytes, larger than a UDP datagram", len(data))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.conn == nil {
		return fmt.Errorf("UDP server not started")
	}
	for key, addr := range s.clients {
		if _, err := s.conn.WriteToUDP(data, addr); err != nil {
			log.Printf("Failed to send to UDP client %s: %v", key, err)
		}
	}
	return nil
}

// ClientCount returns registered client count
func (s *UDPServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Shutdown closes the UDP socket
func (s *UDPServer) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// Address returns the server address
func (s *UDPServer) Address() string {
	return fmt.Sprintf("udp://%s:%d", s.host, s.port)
}
