// Impostor
//
// Players gather in a room. Once everyone in the lobby is ready, one of them is
// secretly chosen as the impostor and everybody else is shown the same secret
// identity. Players then vote on who they think the impostor is.
//
// Features:
// - Rooms with 6-char codes: /api/create-room, then /room/:id and /room/:id/ws
// - Room existence probe at /api/room-exists/:id
// - Each websocket connection is one player, identified by a random UUID
// - Round starts automatically when 3+ players are all ready
// - Ties eliminate nobody; the room votes again
// - After a win the room resets and the next round starts on its own
// - Rooms are removed as soon as the last player leaves
// - In-browser QR button to share the room, backed by go-qrcode

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Seednode/impostor/games/impostor"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Messages coming from clients
type ClientMessage struct {
	Type   string `json:"type" validate:"required,oneof=join ready vote"`
	Name   string `json:"name,omitempty" validate:"max=256"`                 // join
	Ready  *bool  `json:"ready,omitempty" validate:"required_if=Type ready"` // ready
	Target string `json:"target,omitempty" validate:"required_if=Type vote,max=64"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
	roomID   string
}

// Gateway tracks websocket clients per room and delivers session output to them.
type Gateway struct {
	cfg      *Config
	logger   *zap.Logger
	validate *validator.Validate

	mu      sync.Mutex
	clients map[string]map[string]*Client // roomID -> playerID -> client

	registry *impostor.Registry
}

func newGateway(cfg *Config, logger *zap.Logger) *Gateway {
	return &Gateway{
		cfg:      cfg,
		logger:   logger.Named("gateway"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clients:  make(map[string]map[string]*Client),
	}
}

func (g *Gateway) attach(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.clients[c.roomID]
	if !ok {
		room = make(map[string]*Client)
		g.clients[c.roomID] = room
	}
	room[c.playerID] = c
}

// detach forgets the client and closes its send channel, once.
func (g *Gateway) detach(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dropLocked(c)
}

func (g *Gateway) dropLocked(c *Client) {
	room, ok := g.clients[c.roomID]
	if !ok || room[c.playerID] != c {
		return
	}

	delete(room, c.playerID)
	close(c.send)

	if len(room) == 0 {
		delete(g.clients, c.roomID)
	}
}

func (g *Gateway) Broadcast(roomID string, msg any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, client := range g.clients[roomID] {
		select {
		case client.send <- msg:
		default:
			g.dropLocked(client)
		}
	}
}

func (g *Gateway) Send(roomID, playerID string, msg any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	client, ok := g.clients[roomID][playerID]
	if !ok {
		return
	}

	select {
	case client.send <- msg:
	default:
		g.dropLocked(client)
	}
}

func (g *Gateway) dispatch(s *impostor.Session, c *Client, msg ClientMessage) {
	if err := g.validate.Struct(msg); err != nil {
		g.logger.Debug("invalid client message",
			zap.String("room", c.roomID),
			zap.String("player", c.playerID),
			zap.Error(err))
		return
	}

	switch msg.Type {
	case "join":
		s.Join(c.playerID, msg.Name)
	case "ready":
		s.SetReady(c.playerID, *msg.Ready)
	case "vote":
		s.CastVote(c.playerID, msg.Target)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket handler that picks the session based on :id
func serveWS(g *Gateway) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		s, err := g.registry.Lookup(ps.ByName("id"))
		if errors.Is(err, impostor.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		roomID := s.ID()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			g.logger.Warn("upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 32),
			playerID: uuid.NewString(),
			roomID:   roomID,
		}

		g.attach(client)

		g.Send(roomID, client.playerID, impostor.WelcomeMessage{
			Type:     impostor.TypeWelcome,
			PlayerID: client.playerID,
			RoomID:   roomID,
		})

		logf(g.cfg, "GAMES: Player %s connected to %s from %s", client.playerID, roomID, realIP(r))

		go client.writePump()
		client.readPump(g, s)
	}
}

func (c *Client) readPump(g *Gateway, s *impostor.Session) {
	defer func() {
		s.Leave(c.playerID)
		g.detach(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			var typeErr *json.UnmarshalTypeError
			var syntaxErr *json.SyntaxError
			if errors.As(err, &typeErr) || errors.As(err, &syntaxErr) {
				continue
			}
			return
		}

		g.dispatch(s, c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
}

type roomExistsResponse struct {
	Exists bool `json:"exists"`
}

func writeJSON(cfg *Config, w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)

	return json.NewEncoder(w).Encode(v)
}

func serveCreateRoom(g *Gateway, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := g.registry.Create()

		logf(g.cfg, "GAMES: Created room %s for %s", id, realIP(r))

		if err := writeJSON(g.cfg, w, createRoomResponse{RoomID: id}); err != nil {
			errs <- err
		}
	}
}

func serveRoomExists(g *Gateway, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		exists := g.registry.Exists(ps.ByName("id"))

		if err := writeJSON(g.cfg, w, roomExistsResponse{Exists: exists}); err != nil {
			errs <- err
		}
	}
}

const qrSize = 320

// roomURL is the shareable address of a room as seen by the requesting client.
func roomURL(cfg *Config, r *http.Request, roomID string) string {
	scheme := cfg.scheme()
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/room/" + roomID
}

func serveQR(g *Gateway, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		s, err := g.registry.Lookup(ps.ByName("id"))
		if errors.Is(err, impostor.ErrRoomNotFound) {
			http.NotFound(w, r)
			return
		}

		png, err := qrcode.Encode(roomURL(g.cfg, r, s.ID()), qrcode.Medium, qrSize)
		if err != nil {
			errs <- err

			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(g.cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

// registerImpostorGame sets up routes so that:
//   - /api/create-room       → new room, JSON {roomId}
//   - /api/room-exists/:id   → JSON {exists}
//   - /room/:id              → HTML client
//   - /room/:id/ws           → WebSocket for that room
//   - /room/:id/qr           → PNG QR code for that room URL
func registerImpostorGame(cfg *Config, pool *impostor.Pool, mux *httprouter.Router, errs chan<- error) *impostor.Registry {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := newGateway(cfg, logger)

	g.registry = impostor.NewRegistry(impostor.Options{
		Pool:        pool,
		Rand:        impostor.NewRand(cfg.seed),
		Settings:    cfg.settings(),
		Broadcaster: g,
		Logger:      logger.Named("impostor"),
		IdleTimeout: cfg.sessionTimeout,
	})

	mux.GET(cfg.prefix+"/api/create-room", serveCreateRoom(g, errs))
	mux.GET(cfg.prefix+"/api/room-exists/:id", serveRoomExists(g, errs))

	mux.GET(cfg.prefix+"/room/:id", serveRoomPage(cfg, errs))
	mux.GET(cfg.prefix+"/room/:id/ws", serveWS(g))
	mux.GET(cfg.prefix+"/room/:id/qr", serveQR(g, errs))

	return g.registry
}
