package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsync/internal/core"
	"github.com/vovakirdan/roomsync/internal/proto"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// Channel maintains the long-lived event stream connection for one room.
// Connection loss triggers automatic redial with exponential backoff;
// while disconnected the poll loop is the sole source of truth, so
// outbound operations are best-effort and silently dropped when closed.
// Nothing here is ever fatal: errors are absorbed at this boundary and
// only surface as the connected flag flipping.
type Channel struct {
	url string
	rec *core.Reconciler
	log *zerolog.Logger

	dialTimeout time.Duration
	maxWait     time.Duration

	connected atomic.Bool

	mu   sync.Mutex
	conn *websocket.Conn
	ctx  context.Context
}

// Options tunes connection behavior; zero values pick defaults.
type Options struct {
	DialTimeout      time.Duration
	ReconnectMaxWait time.Duration
}

// New builds a channel that feeds decoded updates into rec.
func New(url string, rec *core.Reconciler, opts Options, logger *zerolog.Logger) *Channel {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.ReconnectMaxWait <= 0 {
		opts.ReconnectMaxWait = 15 * time.Second
	}
	return &Channel{
		url:         url,
		rec:         rec,
		log:         logger,
		dialTimeout: opts.DialTimeout,
		maxWait:     opts.ReconnectMaxWait,
	}
}

// Connected reports whether the stream is currently up.
func (c *Channel) Connected() bool {
	return c.connected.Load()
}

// Run dials and reads until ctx is cancelled, reconnecting on loss.
func (c *Channel) Run(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = c.maxWait
	bo.MaxElapsedTime = 0 // retry forever, teardown happens via ctx

	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait := bo.NextBackOff()
			c.log.Debug().Err(err).Dur("retry_in", wait).Msg("event stream dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}

		bo.Reset()
		c.setConn(conn)
		c.connected.Store(true)
		c.rec.SetLinked(true)
		c.log.Info().Str("url", c.url).Msg("event stream connected")

		// Ask for state immediately instead of waiting for the first
		// broadcast; minimizes time to first consistent render.
		c.RequestState()

		err = c.readLoop(ctx, conn)
		c.setConn(nil)
		c.connected.Store(false)
		c.rec.SetLinked(false)
		conn.Close(websocket.StatusNormalClosure, "closing")

		if ctx.Err() != nil {
			return
		}
		c.log.Warn().Err(err).Msg("event stream lost, reconnecting")
	}
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return err
		}
		c.dispatch(env)
	}
}

// dispatch folds one decoded envelope into the reconciler. Malformed or
// unrecognized envelopes are logged and discarded, never fatal.
func (c *Channel) dispatch(env proto.Envelope) {
	switch env.Type {
	case proto.EnvelopeInitialState, proto.EnvelopeStateUpdate:
		state := proto.RoomToState(env.Room)
		if state == nil {
			c.log.Warn().Str("type", env.Type).Msg("state envelope without room, discarded")
			return
		}
		c.rec.Apply(state, core.OriginPush)

	case proto.EnvelopeChatMessage:
		c.rec.ApplyChat(env.ChatEntry(core.OriginPush))

	case proto.EnvelopeGameEvent:
		var data proto.GameEventData
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				c.log.Warn().Err(err).Str("event", env.Event).Msg("bad game event payload, discarded")
				return
			}
		}
		if data.Room != nil {
			c.rec.Apply(proto.RoomToState(data.Room), core.OriginPush)
			return
		}
		// Event without an embedded snapshot: fall back to a full pull.
		c.log.Debug().Str("event", env.Event).Msg("game event without snapshot, requesting state")
		c.RequestState()

	case proto.EnvelopeConnected, proto.EnvelopePong:
		c.log.Debug().Str("type", env.Type).Msg("stream housekeeping message")

	default:
		c.log.Warn().Str("type", env.Type).Msg("unrecognized envelope, discarded")
	}
}

// SendChat relays a chat line over the stream. Best-effort: dropped when
// the channel is down, with no queued retry; the authoritative log is
// mirrored back by poll or reconnect anyway.
func (c *Channel) SendChat(sender, text string) {
	c.send(proto.Action{Action: proto.ActionChat, Sender: sender, Message: text})
}

// RequestState asks the authority to send the current full snapshot.
func (c *Channel) RequestState() {
	c.send(proto.Action{Action: proto.ActionGetState})
}

// Ping checks stream liveness; the pong is handled in dispatch.
func (c *Channel) Ping() {
	c.send(proto.Action{Action: proto.ActionPing})
}

func (c *Channel) send(action proto.Action) {
	c.mu.Lock()
	conn, ctx := c.conn, c.ctx
	c.mu.Unlock()
	if conn == nil || ctx == nil {
		c.log.Debug().Str("action", action.Action).Msg("stream down, action dropped")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()
	if err := wsjson.Write(writeCtx, conn, action); err != nil {
		c.log.Debug().Err(err).Str("action", action.Action).Msg("stream write failed")
	}
}

func (c *Channel) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}
