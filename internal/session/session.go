package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsync/internal/core"
	"github.com/vovakirdan/roomsync/internal/poll"
	"github.com/vovakirdan/roomsync/internal/proto"
	"github.com/vovakirdan/roomsync/internal/transport/rest"
	"github.com/vovakirdan/roomsync/internal/transport/ws"
)

// Options tunes a session; zero values pick defaults.
type Options struct {
	PollInterval     time.Duration
	DialTimeout      time.Duration
	ReconnectMaxWait time.Duration
}

// Session is one joined room: it owns the reconciler plus both producer
// channels and forwards user intents to the authority. Actions never
// mutate local state optimistically; every authority response is folded
// back through the reconciler like any other candidate snapshot.
type Session struct {
	identity core.Identity
	rec      *core.Reconciler
	api      *rest.Client
	push     *ws.Channel
	log      *zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	leaveOnce sync.Once
}

// Join registers name in the room and starts both update channels. The
// authority assigns the role: player while seats remain, spectator after.
// eventURL is the per-room stream endpoint.
func Join(ctx context.Context, api *rest.Client, eventURL, roomID, name string, opts Options, logger *zerolog.Logger) (*Session, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}

	resp, err := api.JoinRoom(ctx, roomID, name)
	if err != nil {
		return nil, err
	}

	rec := core.NewReconciler(logger)
	rec.Apply(proto.RoomToState(resp.Room), core.OriginResponse)

	s := &Session{
		identity: core.Identity{
			RoomID: roomID,
			Name:   name,
			Mark:   core.Mark(resp.Mark),
			Role:   core.Role(resp.Role),
		},
		rec: rec,
		api: api,
		log: logger,
	}

	s.start(eventURL, opts)

	logger.Info().
		Str("room_id", roomID).
		Str("name", name).
		Str("role", resp.Role).
		Str("mark", resp.Mark).
		Msg("joined room")
	return s, nil
}

// Watch attaches to a room without taking a seat. The session follows
// snapshots and chat like any other, but never holds a mark, so moves
// are refused locally.
func Watch(ctx context.Context, api *rest.Client, eventURL, roomID, name string, opts Options, logger *zerolog.Logger) (*Session, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}

	state, err := api.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	rec := core.NewReconciler(logger)
	rec.Apply(state, core.OriginResponse)

	s := &Session{
		identity: core.Identity{
			RoomID: roomID,
			Name:   name,
			Role:   core.RoleSpectator,
		},
		rec: rec,
		api: api,
		log: logger,
	}
	s.start(eventURL, opts)

	logger.Info().Str("room_id", roomID).Str("name", name).Msg("watching room")
	return s, nil
}

// start launches both producer channels. They outlive the constructor's
// context; only Leave stops them.
func (s *Session) start(eventURL string, opts Options) {
	s.push = ws.New(eventURL, s.rec, ws.Options{
		DialTimeout:      opts.DialTimeout,
		ReconnectMaxWait: opts.ReconnectMaxWait,
	}, s.log)
	loop := poll.New(opts.PollInterval, func(ctx context.Context) (*core.RoomState, error) {
		return s.api.GetRoom(ctx, s.identity.RoomID)
	}, s.rec, s.log)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.push.Run(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		loop.Run(runCtx)
	}()
}

// Identity returns the local, client-owned session identity.
func (s *Session) Identity() core.Identity {
	return s.identity
}

// State returns a copy of the current published snapshot, nil before the
// first one lands.
func (s *Session) State() *core.RoomState {
	return s.rec.State()
}

// Chat returns a copy of the chat log in arrival order.
func (s *Session) Chat() []core.ChatEntry {
	return s.rec.Chat()
}

// Notices subscribes to published state, chat, and link changes.
func (s *Session) Notices() <-chan core.Notice {
	return s.rec.Subscribe()
}

// PushConnected reports whether the event stream is currently up.
func (s *Session) PushConnected() bool {
	return s.push.Connected()
}

// CanPlay gates the local move affordance for cell against the published
// snapshot and this session's identity.
func (s *Session) CanPlay(cell int) bool {
	return core.CanPlay(s.rec.State(), cell, s.identity.Role, s.identity.Mark)
}

// Move submits a move. Rejections come back as *core.Rejection with the
// published state untouched; on success the response snapshot is applied.
func (s *Session) Move(ctx context.Context, cell int) error {
	if !s.identity.Joined() {
		return core.ErrNoSession
	}
	if s.identity.Role != core.RolePlayer {
		return core.ErrNotPlayer
	}

	state, err := s.api.Move(ctx, s.identity.RoomID, s.identity.Name, cell)
	if err != nil {
		return err
	}
	s.rec.Apply(state, core.OriginResponse)
	return nil
}

// SendChat relays a chat line via the authority; the broadcast comes back
// on the stream (or poll) and is appended there, so nothing is echoed
// locally.
func (s *Session) SendChat(ctx context.Context, text string) error {
	if !s.identity.Joined() {
		return core.ErrNoSession
	}
	if text == "" {
		return nil
	}
	return s.api.SendChat(ctx, s.identity.RoomID, s.identity.Name, text)
}

// Reset asks for a new game generation and applies the fresh snapshot.
func (s *Session) Reset(ctx context.Context) error {
	if !s.identity.Joined() {
		return core.ErrNoSession
	}
	state, err := s.api.Reset(ctx, s.identity.RoomID)
	if err != nil {
		return err
	}
	s.rec.Apply(state, core.OriginResponse)
	return nil
}

// Leave deterministically stops the poll loop and closes the stream
// before the session is discarded, then tells the authority best-effort.
// Safe to call more than once.
func (s *Session) Leave() {
	s.leaveOnce.Do(func() {
		s.cancel()
		s.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.api.LeaveRoom(ctx, s.identity.RoomID, s.identity.Name); err != nil {
			s.log.Debug().Err(err).Msg("leave notification failed")
		}
		s.log.Info().Str("room_id", s.identity.RoomID).Msg("left room")
	})
}
