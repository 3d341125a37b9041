package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-neosim/internal/diagnostics"
)

const (
	sendQueue    = 8
	writeTimeout = 200 * time.Millisecond
)

// Frame is one rendered strand frame as sent to preview clients.
type Frame struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Seq     uint64 `json:"seq"`
	T       int64  `json:"t"`
	Text    string `json:"text"`
	// RGB is the device-native pixel buffer, base64 in JSON.
	RGB    []byte `json:"rgb"`
	Layout string `json:"layout"`
}

type hello struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Client  string `json:"client"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// Hub broadcasts frames to every connected preview client. Slow clients
// miss frames rather than stalling the publisher.
type Hub struct {
	mu        sync.RWMutex
	session   string
	seq       uint64
	last      []byte
	startTime time.Time
	clients   map[*client]bool
	closed    bool

	// Health, when set, supplies the diagnostics reported on /health.
	Health func() []diag.Diagnostic
}

func NewHub() *Hub {
	return &Hub{
		session:   uuid.NewString(),
		startTime: time.Now(),
		clients:   map[*client]bool{},
	}
}

func (h *Hub) Session() string { return h.session }

// Handler serves /ws and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// Publish stamps f with the session and the next sequence number and queues
// it for every client. It returns the sequence number used.
func (h *Hub) Publish(f Frame) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	f.Type = "frame"
	f.Session = h.session
	f.Seq = h.seq
	f.T = time.Now().UnixNano()
	b, err := json.Marshal(f)
	if err != nil {
		log.Warn().Err(err).Msg("encode frame")
		return f.Seq
	}
	h.last = b
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			log.Debug().Str("client", c.id).Uint64("seq", f.Seq).Msg("client behind, frame dropped")
		}
	}
	return f.Seq
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendQueue)}
	hb, _ := json.Marshal(hello{Type: "hello", Session: h.session, Client: c.id})
	c.send <- hb

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c] = true
	h.mu.Unlock()
	log.Debug().Str("client", c.id).Str("remote", r.RemoteAddr).Msg("preview client connected")

	go h.writeLoop(c)
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) writeLoop(c *client) {
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Str("client", c.id).Msg("write frame")
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c)
		close(c.send)
		h.mu.Unlock()
		c.conn.Close()
		log.Debug().Str("client", c.id).Msg("preview client gone")
	})
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"session":  h.session,
		"seq":      h.seq,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"clients":  len(h.clients),
	}
	h.mu.RUnlock()

	status := diag.Info
	if h.Health != nil {
		ds := h.Health()
		status = diag.Worst(ds)
		resp["diagnostics"] = ds
	}
	resp["status"] = status
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Close disconnects every client; later connections are refused.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	cs := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		cs = append(cs, c)
	}
	h.mu.Unlock()
	for _, c := range cs {
		h.drop(c)
	}
	return nil
}
