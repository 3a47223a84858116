// Package server optionally exposes the cube assembler's progress over
// HTTP and WebSocket while a long batch run is in flight (spec.md §4.6).
// It is a side observer: it never reads from or mutates the assembler's
// active-frames set or image cube, only the small Stats snapshots handed
// to it after each record (spec.md §5).
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"frameresample/internal/assembler"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

// Server broadcasts assembler progress to connected WebSocket clients
// and serves it as JSON at /status.
type Server struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]*sync.Mutex
	updates  chan struct{}

	statusMu   sync.Mutex
	stats      assembler.Stats
	currentSrc string
}

// New constructs a Server; call Run to start serving. updates is
// buffered and drained by a dedicated goroutine in Run, so Report never
// blocks the assembler's single goroutine on a slow or absent dashboard
// client.
func New() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		updates:  make(chan struct{}, 16),
	}
}

// Report implements assembler.Reporter by updating the latest snapshot
// and signaling the broadcast goroutine. A full updates channel means a
// broadcast is already pending, so the signal is dropped rather than
// blocking the caller.
func (s *Server) Report(stats assembler.Stats, currentSrc string) {
	s.statusMu.Lock()
	s.stats = stats
	s.currentSrc = currentSrc
	s.statusMu.Unlock()

	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Run serves /status and /ws on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWS)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	go s.broadcastLoop(ctx)

	return httpServer.ListenAndServe()
}

// broadcastLoop pushes the latest snapshot to every connected client
// each time Report signals an update, until ctx is canceled.
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.updates:
			s.broadcast()
		}
	}
}

func (s *Server) snapshot() map[string]any {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return map[string]any{
		"records_processed": s.stats.RecordsProcessed,
		"records_skipped":   s.stats.RecordsSkipped,
		"planes_written":    s.stats.PlanesWritten,
		"current_src":       s.currentSrc,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshot())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeMu := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = writeMu
	s.mu.Unlock()

	_ = s.writeJSON(conn, writeMu, s.snapshot())

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := s.writeMessage(conn, writeMu, websocket.PingMessage, nil); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()
	defer close(done)
	defer s.removeClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) broadcast() {
	payload, err := json.Marshal(s.snapshot())
	if err != nil {
		return
	}
	var stale []*websocket.Conn
	s.mu.Lock()
	for conn, writeMu := range s.clients {
		if err := s.writeMessage(conn, writeMu, websocket.TextMessage, payload); err != nil {
			stale = append(stale, conn)
		}
	}
	s.mu.Unlock()
	for _, conn := range stale {
		s.removeClient(conn)
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *Server) writeJSON(conn *websocket.Conn, writeMu *sync.Mutex, payload any) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(payload)
}

func (s *Server) writeMessage(conn *websocket.Conn, writeMu *sync.Mutex, messageType int, payload []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
