package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/behaviortree/internal/core/events/bus"
	"github.com/zeusync/behaviortree/internal/core/observability/log"
)

const writeWait = 5 * time.Second

var (
	ErrServerClosed   = errors.New("monitor closed")
	ErrAlreadyStarted = errors.New("monitor already started")
)

// Frame is the JSON message sent to websocket clients for every bus event.
type Frame struct {
	Type   string    `json:"type"`
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
	Data   any       `json:"data,omitempty"`
}

type Config struct {
	Addr string
	// Buffer is the per-client queue length.
	Buffer int
}

// Stats is served on /stats.
type Stats struct {
	Clients int                 `json:"clients"`
	Dropped uint64              `json:"dropped"`
	Bus     bus.EventBusMetrics `json:"bus"`
}

// Server streams bus events to websocket clients. It is read-only: messages
// sent by clients are discarded.
type Server struct {
	events   bus.EventBus
	log      log.Log
	cfg      Config
	hub      *hub
	upgrader websocket.Upgrader
	sub      bus.Subscription

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	closed   bool
}

func New(events bus.EventBus, logger log.Log, cfg Config) (*Server, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	s := &Server{
		events: events,
		log:    logger.Named("monitor"),
		cfg:    cfg,
		hub:    newHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	sub, err := events.Subscribe(bus.Wildcard, s.forward)
	if err != nil {
		return nil, fmt.Errorf("subscribe monitor: %w", err)
	}
	s.sub = sub
	return s, nil
}

func (s *Server) forward(e bus.Event) error {
	f := Frame{Type: e.Type(), Source: e.Source(), Time: e.Timestamp(), Data: e.Data()}
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	s.hub.broadcast(f, b)
	return nil
}

// Handler serves /ws, /stats and /healthz. The websocket endpoint accepts
// optional agent=<id> and type=<event type>[,<event type>] filters.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/stats", s.serveStats)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *Server) Clients() int    { return s.hub.len() }
func (s *Server) Dropped() uint64 { return s.hub.dropped.Load() }

func (s *Server) Stats() Stats {
	return Stats{Clients: s.Clients(), Dropped: s.Dropped(), Bus: s.events.GetMetrics()}
}

func (s *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Stats()); err != nil {
		s.log.Warn("write stats", log.Error(err))
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, s.cfg.Buffer), agent: r.URL.Query().Get("agent")}
	if types := r.URL.Query().Get("type"); types != "" {
		c.types = make(map[string]struct{})
		for _, t := range strings.Split(types, ",") {
			c.types[strings.TrimSpace(t)] = struct{}{}
		}
	}
	s.hub.add(c)
	s.log.Debug("client connected", log.String("remote", conn.RemoteAddr().String()))
	defer func() {
		s.hub.remove(c)
		_ = conn.Close()
		s.log.Debug("client disconnected", log.String("remote", conn.RemoteAddr().String()))
	}()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(c)
				return
			}
		}
	}()

	for b := range c.send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// Start listens on Config.Addr and serves in the background until ctx is
// done or Close is called. It may be called once.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	if s.listener != nil {
		return ErrAlreadyStarted
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("monitor listen: %w", err)
	}
	s.listener = ln
	s.http = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	srv := s.http

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("monitor stopped", log.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	s.log.Info("monitor listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close stops forwarding events and disconnects all clients.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.http
	s.mu.Unlock()

	err := s.events.Unsubscribe(s.sub)
	s.hub.closeAll()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		err = errors.Join(err, srv.Shutdown(ctx))
	}
	return err
}
