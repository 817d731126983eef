// Package stub is an in-process room authority: the same REST surface
// and event stream the real service exposes, backed by in-memory rooms.
// It exists for integration tests and local play, not production use.
package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsync/internal/core"
	"github.com/vovakirdan/roomsync/internal/proto"
)

type room struct {
	state *core.RoomState
	subs  map[chan proto.Envelope]struct{}
}

// Authority serves rooms over HTTP and a per-room websocket event stream.
type Authority struct {
	log *zerolog.Logger

	mu    sync.Mutex
	rooms map[string]*room
}

// New builds an empty authority.
func New(logger *zerolog.Logger) *Authority {
	return &Authority{
		log:   logger,
		rooms: make(map[string]*room),
	}
}

// Router returns the gin handler with all room routes mounted.
func (a *Authority) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/rooms", a.createRoom)
	r.POST("/rooms/:id/join", a.joinRoom)
	r.POST("/rooms/:id/move", a.move)
	r.POST("/rooms/:id/reset", a.reset)
	r.POST("/rooms/:id/chat", a.chat)
	r.POST("/rooms/:id/leave", a.leave)
	r.GET("/rooms/:id", a.getRoom)
	r.GET("/rooms/:id/events", a.events)
	return r
}

func (a *Authority) createRoom(c *gin.Context) {
	id := uuid.NewString()

	a.mu.Lock()
	a.rooms[id] = &room{
		state: newState(id),
		subs:  make(map[chan proto.Envelope]struct{}),
	}
	a.mu.Unlock()

	a.log.Info().Str("room_id", id).Msg("room created")
	c.JSON(http.StatusOK, proto.CreateRoomResponse{RoomID: id})
}

func (a *Authority) joinRoom(c *gin.Context) {
	var req proto.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "participant name is required"})
		return
	}

	a.mu.Lock()
	rm, ok := a.rooms[c.Param("id")]
	if !ok {
		a.mu.Unlock()
		c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "room not found"})
		return
	}
	role, mark := joinRoom(rm.state, req.Name)
	snapshot := proto.StateToRoom(rm.state)
	a.broadcastLocked(rm, proto.Envelope{
		Type:      proto.EnvelopeGameEvent,
		Event:     "player_joined",
		Data:      mustJSON(proto.GameEventData{Room: snapshot}),
		Timestamp: now(),
	})
	a.mu.Unlock()

	a.log.Info().Str("name", req.Name).Str("role", string(role)).Msg("participant joined")
	c.JSON(http.StatusOK, proto.JoinResponse{Role: string(role), Mark: string(mark), Room: snapshot})
}

func (a *Authority) move(c *gin.Context) {
	var req proto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "player name and cell are required"})
		return
	}

	a.mu.Lock()
	rm, ok := a.rooms[c.Param("id")]
	if !ok {
		a.mu.Unlock()
		c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "room not found"})
		return
	}
	if err := applyMove(rm.state, req.Name, req.Cell); err != nil {
		a.mu.Unlock()
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: err.Error()})
		return
	}
	snapshot := proto.StateToRoom(rm.state)
	a.broadcastLocked(rm, proto.Envelope{
		Type:      proto.EnvelopeStateUpdate,
		Room:      snapshot,
		Timestamp: now(),
	})
	a.mu.Unlock()

	c.JSON(http.StatusOK, proto.RoomResponse{Room: snapshot})
}

func (a *Authority) reset(c *gin.Context) {
	a.mu.Lock()
	rm, ok := a.rooms[c.Param("id")]
	if !ok {
		a.mu.Unlock()
		c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "room not found"})
		return
	}
	resetRoom(rm.state)
	snapshot := proto.StateToRoom(rm.state)
	a.broadcastLocked(rm, proto.Envelope{
		Type:      proto.EnvelopeGameEvent,
		Event:     "game_restarted",
		Data:      mustJSON(proto.GameEventData{Room: snapshot}),
		Timestamp: now(),
	})
	a.mu.Unlock()

	c.JSON(http.StatusOK, proto.RoomResponse{Room: snapshot})
}

func (a *Authority) chat(c *gin.Context) {
	var req proto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Text == "" {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "name and text are required"})
		return
	}

	a.mu.Lock()
	rm, ok := a.rooms[c.Param("id")]
	if !ok {
		a.mu.Unlock()
		c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "room not found"})
		return
	}
	role := core.RoleSpectator
	if rm.state.MarkOf(req.Name) != core.NoMark {
		role = core.RolePlayer
	}
	a.broadcastLocked(rm, proto.Envelope{
		Type:       proto.EnvelopeChatMessage,
		Sender:     req.Name,
		SenderRole: string(role),
		Message:    req.Text,
		Timestamp:  now(),
	})
	a.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (a *Authority) leave(c *gin.Context) {
	var req proto.LeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "participant name is required"})
		return
	}

	a.mu.Lock()
	rm, ok := a.rooms[c.Param("id")]
	if !ok {
		a.mu.Unlock()
		c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "room not found"})
		return
	}
	// Players keep their seat so marks stay stable; only spectators are
	// pruned from the roster.
	kept := rm.state.Spectators[:0]
	for _, sp := range rm.state.Spectators {
		if sp != req.Name {
			kept = append(kept, sp)
		}
	}
	rm.state.Spectators = kept
	snapshot := proto.StateToRoom(rm.state)
	a.broadcastLocked(rm, proto.Envelope{
		Type:      proto.EnvelopeStateUpdate,
		Room:      snapshot,
		Timestamp: now(),
	})
	a.mu.Unlock()

	c.JSON(http.StatusOK, proto.RoomResponse{Room: snapshot})
}

func (a *Authority) getRoom(c *gin.Context) {
	a.mu.Lock()
	rm, ok := a.rooms[c.Param("id")]
	if !ok {
		a.mu.Unlock()
		c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "room not found"})
		return
	}
	snapshot := proto.StateToRoom(rm.state)
	a.mu.Unlock()

	c.JSON(http.StatusOK, snapshot)
}

// events upgrades to a websocket and bridges the room's broadcast feed.
func (a *Authority) events(c *gin.Context) {
	roomID := c.Param("id")

	a.mu.Lock()
	rm, ok := a.rooms[roomID]
	if !ok {
		a.mu.Unlock()
		c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "room not found"})
		return
	}
	sub := make(chan proto.Envelope, 32)
	rm.subs[sub] = struct{}{}
	greeting := proto.Envelope{Type: proto.EnvelopeConnected, Timestamp: now()}
	initial := proto.Envelope{Type: proto.EnvelopeInitialState, Room: proto.StateToRoom(rm.state), Timestamp: now()}
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(rm.subs, sub)
		a.mu.Unlock()
	}()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("event stream accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.writeLoop(ctx, conn, sub, greeting, initial)
	}()
	go func() {
		errCh <- a.readLoop(ctx, conn, roomID, sub)
	}()

	<-errCh
	cancel()
	<-errCh
	conn.Close(websocket.StatusNormalClosure, "closing")
}

func (a *Authority) writeLoop(ctx context.Context, conn *websocket.Conn, sub chan proto.Envelope, pending ...proto.Envelope) error {
	for _, env := range pending {
		if err := wsjson.Write(ctx, conn, env); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-sub:
			if err := wsjson.Write(ctx, conn, env); err != nil {
				return err
			}
		}
	}
}

// readLoop handles inbound actions. Responses go through the connection's
// subscriber channel so writeLoop stays the only goroutine writing frames.
func (a *Authority) readLoop(ctx context.Context, conn *websocket.Conn, roomID string, sub chan proto.Envelope) error {
	for {
		var action proto.Action
		if err := wsjson.Read(ctx, conn, &action); err != nil {
			return err
		}

		switch action.Action {
		case proto.ActionGetState:
			a.mu.Lock()
			rm, ok := a.rooms[roomID]
			var env proto.Envelope
			if ok {
				env = proto.Envelope{Type: proto.EnvelopeStateUpdate, Room: proto.StateToRoom(rm.state), Timestamp: now()}
			}
			a.mu.Unlock()
			if ok {
				select {
				case sub <- env:
				default:
				}
			}

		case proto.ActionPing:
			select {
			case sub <- proto.Envelope{Type: proto.EnvelopePong, Timestamp: now()}:
			default:
			}

		case proto.ActionChat:
			a.mu.Lock()
			if rm, ok := a.rooms[roomID]; ok {
				role := core.RoleSpectator
				if rm.state.MarkOf(action.Sender) != core.NoMark {
					role = core.RolePlayer
				}
				a.broadcastLocked(rm, proto.Envelope{
					Type:       proto.EnvelopeChatMessage,
					Sender:     action.Sender,
					SenderRole: string(role),
					Message:    action.Message,
					Timestamp:  now(),
				})
			}
			a.mu.Unlock()

		default:
			a.log.Debug().Str("action", action.Action).Msg("unknown action ignored")
		}
	}
}

// broadcastLocked fans an envelope out to every stream subscriber of the
// room. Callers hold a.mu. Slow consumers are dropped, not waited on.
func (a *Authority) broadcastLocked(rm *room, env proto.Envelope) {
	for sub := range rm.subs {
		select {
		case sub <- env:
		default:
		}
	}
}

func now() string {
	return time.Now().Format(time.RFC3339Nano)
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
