// Package server streams a cube's animation to websocket viewers and
// accepts moves from them.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/render"
)

const writeWait = 5 * time.Second

// Frame is the per-tick state sent to viewers.
type Frame struct {
	Type      string        `json:"type"`
	Tick      uint64        `json:"tick"`
	State     string        `json:"state"`
	Active    string        `json:"active,omitempty"`
	Step      int           `json:"step"`
	Angle     float64       `json:"angle"`
	Distance  float64       `json:"distance"`
	Paused    bool          `json:"paused"`
	Pending   []string      `json:"pending"`
	Completed uint64        `json:"completed"`
	Cubelets  []CubeletView `json:"cubelets"`
}

// CubeletView is one cubelet in a frame.
type CubeletView struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Display string  `json:"display"`
}

type clientMessage struct {
	Move  string `json:"move,omitempty"`
	Moves string `json:"moves,omitempty"`
}

type queuedMessage struct {
	Type  string   `json:"type"`
	Moves []string `json:"moves"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// client is one websocket viewer. Writes are serialized per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Server owns the tick loop for one cube and fans frames out to clients.
type Server struct {
	cube     *rubikal.Cube
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*client]struct{}
	idleSent bool
}

// New creates a server for cube.
func New(cube *rubikal.Cube, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cube:   cube,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP routes: /ws for viewers and /net for a plain
// text rendering of the cube.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/net", s.handleNet)
	return mux
}

// Run ticks the cube at its frame interval until ctx is done.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cube.FrameInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			s.step()
		}
	}
}

// step advances one frame. While animating every tick is broadcast; once
// idle a single frame is sent until work arrives again.
func (s *Server) step() {
	if !s.cube.Busy() {
		s.mu.Lock()
		sent := s.idleSent
		s.idleSent = true
		s.mu.Unlock()
		if !sent {
			s.broadcast(s.frame())
		}
		return
	}

	s.cube.Tick()
	s.mu.Lock()
	s.idleSent = false
	s.mu.Unlock()
	s.broadcast(s.frame())
}

func (s *Server) frame() Frame {
	snap := s.cube.Snapshot()

	f := Frame{
		Type:      "frame",
		Tick:      snap.Tick,
		State:     snap.State.String(),
		Step:      snap.Step,
		Angle:     snap.Angle,
		Distance:  snap.Distance,
		Paused:    snap.Paused,
		Pending:   make([]string, len(snap.Pending)),
		Completed: snap.Completed,
		Cubelets:  make([]CubeletView, len(snap.Cubelets)),
	}
	if snap.Active != nil {
		f.Active = snap.Active.String()
	}
	for i, r := range snap.Pending {
		f.Pending[i] = r.String()
	}
	for i, c := range snap.Cubelets {
		f.Cubelets[i] = CubeletView{
			ID:      c.ID,
			X:       c.Position.X,
			Y:       c.Position.Y,
			Z:       c.Position.Z,
			Display: c.Display.String(),
		}
	}
	return f
}

func (s *Server) broadcast(f Frame) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.writeJSON(f); err != nil {
			s.logger.Debug("dropping viewer", "remote", c.conn.RemoteAddr().String(), "error", err)
			s.remove(c)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer s.remove(c)

	s.logger.Info("viewer connected", "remote", r.RemoteAddr)

	if err := c.writeJSON(s.frame()); err != nil {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			if c.writeJSON(errorMessage{Type: "error", Error: "malformed message"}) != nil {
				return
			}
			continue
		}

		if err := c.writeJSON(s.apply(msg)); err != nil {
			return
		}
	}
}

// apply queues the moves in msg and returns the reply for the sender.
func (s *Server) apply(msg clientMessage) any {
	var tokens []string
	if msg.Move != "" {
		tokens = append(tokens, msg.Move)
	}
	if msg.Moves != "" {
		rotations, err := rubikal.ParseMoves(msg.Moves)
		if err != nil {
			return errorMessage{Type: "error", Error: err.Error()}
		}
		for _, r := range rotations {
			tokens = append(tokens, r.Token())
		}
	}

	if len(tokens) == 0 {
		return errorMessage{Type: "error", Error: "no moves"}
	}

	if err := s.cube.RotateFaces(tokens...); err != nil {
		return errorMessage{Type: "error", Error: err.Error()}
	}

	s.logger.Debug("queued moves", "moves", tokens)
	return queuedMessage{Type: "queued", Moves: tokens}
}

func (s *Server) handleNet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(render.Renderer{}.Snapshot(s.cube.Snapshot()) + "\n"))
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	if ok {
		c.conn.Close()
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	for c := range clients {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.mu.Unlock()
		c.conn.Close()
	}
}

// Clients returns the number of connected viewers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
