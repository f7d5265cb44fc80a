package stream

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/particlesim/internal/sim"
)

const (
	writeWait     = 2 * time.Second
	sendQueueSize = 4
	inputQueue    = 64
)

type Options struct {
	// FPS is the broadcast and step rate.
	FPS int
	// Full sends the complete float64 records instead of compact x, y, r.
	Full bool
	// Count is the population restored by a reset input.
	Count int
}

// Server steps one simulator and fans its frames out to every connected
// client.
type Server struct {
	sim      *sim.Simulator
	opts     Options
	upgrader websocket.Upgrader
	inputs   chan Input
	enc      encoder

	mu      sync.Mutex
	clients map[*client]struct{}

	gx, gy      float64
	gravityMode string
	paused      bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewServer(s *sim.Simulator, opts Options) *Server {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Count <= 0 {
		opts.Count = s.World().Len()
	}
	return &Server{
		sim:  s,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		inputs:  make(chan Input, inputQueue),
		enc:     encoder{full: opts.Full},
		clients: make(map[*client]struct{}),
	}
}

// Handler serves the websocket endpoint on /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.wsHandler)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Print(r.RemoteAddr + " " + r.Method + " " + r.URL.String())
		mux.ServeHTTP(w, r)
	})
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			log.Println(err)
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendQueueSize)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writeSocket(c)
	go s.readSocket(c)
}

// readSocket queues client inputs until the connection closes.
func (s *Server) readSocket(c *client) {
	defer s.drop(c)

	for {
		messageType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("error: %v", err)
			}
			return
		}

		in, err := decodeInput(messageType, msg)
		if err != nil {
			log.Println(err)
			continue
		}
		select {
		case s.inputs <- in:
		default:
			log.Printf("input queue full, dropping %s", in.Type)
		}
	}
}

func (s *Server) writeSocket(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			log.Println(err)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// broadcast hands data to every client. Slow clients skip frames rather
// than stall the simulation.
func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

// Run steps the simulation at opts.FPS until ctx ends. Gravity from cfg is
// the starting value; clients may change it.
func (s *Server) Run(ctx context.Context, cfg sim.Config) error {
	defer s.closeAll()

	s.gx, s.gy, s.gravityMode = cfg.GravityX, cfg.GravityY, cfg.GravityMode
	cfg.GravityX, cfg.GravityY = 0, 0

	ticker := time.NewTicker(time.Second / time.Duration(s.opts.FPS))
	defer ticker.Stop()

	for {
		err := s.sim.RunWithCallback(ctx, cfg, func(f sim.Frame) bool {
			select {
			case <-ctx.Done():
				return false
			case <-ticker.C:
			}
			s.apply(cfg)
			s.publish(f)
			for s.paused {
				select {
				case <-ctx.Done():
					return false
				case <-ticker.C:
					s.apply(cfg)
					s.publish(f)
				}
			}
			s.applyGravity(cfg.Dt)
			return true
		})
		if err != nil || ctx.Err() != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// apply drains queued inputs. Runs on the simulation goroutine.
func (s *Server) apply(cfg sim.Config) {
	world := s.sim.World()
	for {
		select {
		case in := <-s.inputs:
			switch in.Type {
			case InputForce:
				if err := world.ApplyForce(in.X, in.Y, in.Radius, in.Strength); err != nil {
					log.Printf("force input rejected: %v", err)
				}
			case InputGravity:
				s.gx, s.gy = in.GX, in.GY
			case InputReset:
				w, h := world.Bounds()
				if err := world.Initialize(s.opts.Count, w, h, world.Damping()); err != nil {
					log.Printf("reset failed: %v", err)
				}
			case InputPause:
				s.paused = !s.paused
			}
		default:
			return
		}
	}
}

func (s *Server) applyGravity(dt float64) {
	if s.gx == 0 && s.gy == 0 {
		return
	}
	if s.gravityMode == sim.GravityTime {
		s.sim.World().ApplyGravityDt(s.gx, s.gy, dt)
		return
	}
	s.sim.World().ApplyGravity(s.gx, s.gy)
}

func (s *Server) publish(f sim.Frame) {
	f.View = s.sim.World().View()
	data, err := s.enc.encode(f)
	if err != nil {
		log.Printf("encode frame: %v", err)
		return
	}
	s.broadcast(data)
}
