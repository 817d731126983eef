package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsync/internal/core"
	"github.com/vovakirdan/roomsync/internal/proto"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func testRoom(turn string) *proto.Room {
	return &proto.Room{
		ID:      "r1",
		Board:   make([]string, 9),
		Players: []string{"ana", "bruno"},
		Turn:    turn,
	}
}

// streamServer accepts event stream connections and hands each to serve.
func streamServer(t *testing.T, serve func(ctx context.Context, conn *websocket.Conn)) string {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")
		serve(r.Context(), conn)
	}))
	t.Cleanup(ts.Close)

	return strings.Replace(ts.URL, "http", "ws", 1)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestChannelRequestsStateOnOpenAndApplies(t *testing.T) {
	url := streamServer(t, func(ctx context.Context, conn *websocket.Conn) {
		var action proto.Action
		if err := wsjson.Read(ctx, conn, &action); err != nil {
			return
		}
		if action.Action != proto.ActionGetState {
			t.Errorf("expected get_state first, got %q", action.Action)
			return
		}
		_ = wsjson.Write(ctx, conn, proto.Envelope{Type: proto.EnvelopeStateUpdate, Room: testRoom("X")})
		<-ctx.Done()
	})

	rec := core.NewReconciler(nopLogger())
	ch := New(url, rec, Options{}, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	waitFor(t, "state from stream", func() bool {
		s := rec.State()
		return s != nil && s.Turn == core.MarkX
	})
	if !ch.Connected() {
		t.Fatal("channel should report connected")
	}
}

func TestChannelDispatchesChatAndIgnoresUnknown(t *testing.T) {
	url := streamServer(t, func(ctx context.Context, conn *websocket.Conn) {
		var action proto.Action
		if err := wsjson.Read(ctx, conn, &action); err != nil {
			return
		}
		// Unknown envelopes must be discarded without killing the stream.
		_ = wsjson.Write(ctx, conn, map[string]any{"type": "totally_new_thing", "x": 1})
		_ = wsjson.Write(ctx, conn, proto.Envelope{
			Type:      proto.EnvelopeChatMessage,
			Sender:    "ana",
			Message:   "gg",
			Timestamp: time.Now().Format(time.RFC3339Nano),
		})
		_ = wsjson.Write(ctx, conn, proto.Envelope{Type: proto.EnvelopeInitialState, Room: testRoom("O")})
		<-ctx.Done()
	})

	rec := core.NewReconciler(nopLogger())
	ch := New(url, rec, Options{}, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	waitFor(t, "chat entry", func() bool {
		log := rec.Chat()
		return len(log) == 1 && log[0].Author == "ana" && log[0].Text == "gg"
	})
	waitFor(t, "state after unknown envelope", func() bool {
		s := rec.State()
		return s != nil && s.Turn == core.MarkO
	})
}

func TestChannelGameEventWithoutSnapshotTriggersPull(t *testing.T) {
	var stateRequests atomic.Int32

	url := streamServer(t, func(ctx context.Context, conn *websocket.Conn) {
		for {
			var action proto.Action
			if err := wsjson.Read(ctx, conn, &action); err != nil {
				return
			}
			if action.Action != proto.ActionGetState {
				continue
			}
			switch stateRequests.Add(1) {
			case 1:
				// No snapshot embedded: the channel must pull.
				data, _ := json.Marshal(proto.GameEventData{})
				_ = wsjson.Write(ctx, conn, proto.Envelope{Type: proto.EnvelopeGameEvent, Event: "player_joined", Data: data})
			default:
				_ = wsjson.Write(ctx, conn, proto.Envelope{Type: proto.EnvelopeStateUpdate, Room: testRoom("X")})
			}
		}
	})

	rec := core.NewReconciler(nopLogger())
	ch := New(url, rec, Options{}, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	waitFor(t, "fallback pull to land state", func() bool {
		return rec.State() != nil
	})
	if got := stateRequests.Load(); got < 2 {
		t.Fatalf("expected a fallback get_state, saw %d requests", got)
	}
}

func TestChannelReconnectsAfterServerDrop(t *testing.T) {
	var dials atomic.Int32

	url := streamServer(t, func(ctx context.Context, conn *websocket.Conn) {
		n := dials.Add(1)
		var action proto.Action
		if err := wsjson.Read(ctx, conn, &action); err != nil {
			return
		}
		if n == 1 {
			// Drop the first connection right after the state request.
			conn.Close(websocket.StatusGoingAway, "bye")
			return
		}
		_ = wsjson.Write(ctx, conn, proto.Envelope{Type: proto.EnvelopeStateUpdate, Room: testRoom("O")})
		<-ctx.Done()
	})

	rec := core.NewReconciler(nopLogger())
	ch := New(url, rec, Options{ReconnectMaxWait: 100 * time.Millisecond}, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	waitFor(t, "state after reconnect", func() bool {
		s := rec.State()
		return s != nil && s.Turn == core.MarkO
	})
	if dials.Load() < 2 {
		t.Fatalf("expected a redial, saw %d connections", dials.Load())
	}
}

func TestChannelOutboundDroppedWhileDisconnected(t *testing.T) {
	rec := core.NewReconciler(nopLogger())
	ch := New("ws://127.0.0.1:1/rooms/r1/events", rec, Options{}, nopLogger())

	// Never connected: best-effort operations are silent no-ops.
	ch.SendChat("ana", "hello")
	ch.RequestState()
	ch.Ping()

	if ch.Connected() {
		t.Fatal("channel cannot be connected")
	}
}
