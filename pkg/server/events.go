package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/nestboard/pkg/session"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second
	clientQueue = 64
	hubQueue    = 256
)

// hub fans session events out to WebSocket clients. View events are
// coalesced to one per frame.
type hub struct {
	frame  time.Duration
	logger *log.Logger
	in     chan session.Event

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

func newHub(frame time.Duration, logger *log.Logger) *hub {
	return &hub{
		frame:   frame,
		logger:  logger,
		in:      make(chan session.Event, hubQueue),
		clients: make(map[*client]struct{}),
	}
}

// publish queues e without blocking. It runs inside session calls, which
// hold the server mutex.
func (h *hub) publish(e session.Event) {
	select {
	case h.in <- e:
	default:
		h.logger.Warn("event queue full, dropping event", "kind", e.Kind)
	}
}

func (h *hub) run(ctx context.Context) {
	var (
		pending *session.Event
		timer   *time.Timer
		tick    <-chan time.Time
	)
	flush := func() {
		if pending != nil {
			h.broadcast(*pending)
			pending = nil
		}
		if timer != nil {
			timer.Stop()
			timer, tick = nil, nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case e := <-h.in:
			if e.Kind == session.EventView {
				pending = &e
				if timer == nil {
					timer = time.NewTimer(h.frame)
					tick = timer.C
				}
				continue
			}
			flush()
			h.broadcast(e)
		case <-tick:
			timer, tick = nil, nil
			flush()
		}
	}
}

func (h *hub) broadcast(e session.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("encode event", "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("slow event client, disconnecting", "remote", c.conn.RemoteAddr())
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleEvents upgrades the request and streams events until the client
// goes away. Incoming messages are ignored.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientQueue)}
	s.hub.add(c)
	s.logger.Debug("event client connected", "remote", conn.RemoteAddr())

	go c.writer()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("event client read", "err", err)
			}
			break
		}
	}
	s.hub.remove(c)
	s.logger.Debug("event client disconnected", "remote", conn.RemoteAddr())
}

func (c *client) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
