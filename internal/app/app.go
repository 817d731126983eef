// Package app is the terminal presentation layer: it renders the
// published room snapshot and chat, and turns typed commands into
// session actions. All state handling lives below it in the session.
package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsync/internal/config"
	"github.com/vovakirdan/roomsync/internal/core"
	"github.com/vovakirdan/roomsync/internal/session"
	"github.com/vovakirdan/roomsync/internal/transport/rest"
)

// App wires configuration, the authority client, and one live session.
type App struct {
	cfg *config.Config
	api *rest.Client
	log *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{
		cfg: cfg,
		api: rest.New(cfg.ServerURL, logger),
		log: logger,
	}
}

// CreateRoom creates a room and prints its id for sharing.
func (a *App) CreateRoom(ctx context.Context) error {
	id, err := a.api.CreateRoom(ctx)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	fmt.Printf("room created: %s\n", id)
	fmt.Printf("share the id, then: roomsync join %s <your-name>\n", id)
	return nil
}

// Play joins the room and runs the interactive loop until ctx is
// cancelled or the user quits.
func (a *App) Play(ctx context.Context, roomID, name string) error {
	sess, err := session.Join(ctx, a.api, a.cfg.EventURL(roomID), roomID, name, session.Options{
		PollInterval:     a.cfg.PollInterval,
		DialTimeout:      a.cfg.DialTimeout,
		ReconnectMaxWait: a.cfg.ReconnectMaxWait,
	}, a.log)
	if err != nil {
		return fmt.Errorf("join room: %w", err)
	}

	id := sess.Identity()
	if id.Role == core.RoleSpectator {
		fmt.Printf("joined %s as spectator\n", roomID)
	} else {
		fmt.Printf("joined %s as %s (%s)\n", roomID, name, id.Mark)
	}
	return a.run(ctx, sess)
}

// Watch follows a room read-only: snapshots and chat flow in, but no
// seat is taken and moves stay unavailable.
func (a *App) Watch(ctx context.Context, roomID, name string) error {
	sess, err := session.Watch(ctx, a.api, a.cfg.EventURL(roomID), roomID, name, session.Options{
		PollInterval:     a.cfg.PollInterval,
		DialTimeout:      a.cfg.DialTimeout,
		ReconnectMaxWait: a.cfg.ReconnectMaxWait,
	}, a.log)
	if err != nil {
		return fmt.Errorf("watch room: %w", err)
	}

	fmt.Printf("watching %s as %s\n", roomID, name)
	return a.run(ctx, sess)
}

func (a *App) run(ctx context.Context, sess *session.Session) error {
	defer sess.Leave()

	id := sess.Identity()
	fmt.Println("commands: move <0-8>, say <text>, reset, board, quit")
	render(sess.State(), id)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	notices := sess.Notices()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-notices:
			a.show(n, id)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := a.command(ctx, sess, line); quit {
				return nil
			}
		}
	}
}

func (a *App) show(n core.Notice, id core.Identity) {
	switch n.Kind {
	case core.NoticeState:
		render(n.State, id)
	case core.NoticeChat:
		fmt.Printf("[chat] %s: %s\n", n.Entry.Author, n.Entry.Text)
	case core.NoticeLink:
		if n.Linked {
			fmt.Println("(event stream connected)")
		} else {
			fmt.Println("(event stream lost, polling keeps the room fresh)")
		}
	}
}

// command executes one typed line; returns true to quit.
func (a *App) command(ctx context.Context, sess *session.Session, line string) bool {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true

	case "board":
		render(sess.State(), sess.Identity())

	case "reset":
		if err := sess.Reset(ctx); err != nil {
			fmt.Printf("reset failed: %v\n", err)
		}

	case "move":
		if len(fields) != 2 {
			fmt.Println("usage: move <0-8>")
			return false
		}
		cell, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("usage: move <0-8>")
			return false
		}
		if !sess.CanPlay(cell) {
			fmt.Println("that move is not available right now")
			return false
		}
		if err := sess.Move(ctx, cell); err != nil {
			if rej, ok := core.IsRejection(err); ok {
				fmt.Printf("move rejected: %s\n", rej.Message)
			} else {
				fmt.Printf("move failed: %v\n", err)
			}
		}

	case "say":
		text := strings.TrimSpace(strings.TrimPrefix(line, "say"))
		if text == "" {
			return false
		}
		if err := sess.SendChat(ctx, text); err != nil {
			fmt.Printf("chat failed: %v\n", err)
		}

	default:
		fmt.Println("commands: move <0-8>, say <text>, reset, board, quit")
	}
	return false
}

func render(s *core.RoomState, id core.Identity) {
	if s == nil {
		return
	}

	fmt.Println()
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if s.Board[i] == core.NoMark {
				cells[col] = strconv.Itoa(i)
			} else {
				cells[col] = string(s.Board[i])
			}
		}
		fmt.Printf("  %s | %s | %s\n", cells[0], cells[1], cells[2])
		if row < 2 {
			fmt.Println(" ---+---+---")
		}
	}
	fmt.Println()
	fmt.Println(statusLine(s, id))
}

func statusLine(s *core.RoomState, id core.Identity) string {
	switch res := s.Result(); res.Kind {
	case core.ResultWon:
		return fmt.Sprintf("%s wins!", s.NameOf(res.Winner))
	case core.ResultDraw:
		return "it's a draw, type reset to play again"
	}
	if !s.Full() {
		return "waiting for a second player..."
	}
	if id.Role == core.RolePlayer && s.Turn == id.Mark {
		return "your turn"
	}
	return fmt.Sprintf("waiting for %s...", s.NameOf(s.Turn))
}
