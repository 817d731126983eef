package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsync/internal/core"
	"github.com/vovakirdan/roomsync/internal/proto"
)

// Client is the request/response channel to the room authority. A 4xx
// response becomes a core.Rejection; transport failures and 5xx come
// back as plain errors for the caller to absorb or retry.
type Client struct {
	base string
	http *http.Client
	log  *zerolog.Logger
}

// New builds a client for the authority at baseURL.
func New(baseURL string, logger *zerolog.Logger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
		log:  logger,
	}
}

// CreateRoom asks the authority for a fresh room and returns its id.
func (c *Client) CreateRoom(ctx context.Context) (string, error) {
	var out proto.CreateRoomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms", nil, &out); err != nil {
		return "", err
	}
	return out.RoomID, nil
}

// JoinRoom registers a participant. The authority decides the role: the
// first two names become players, everyone after that spectates.
func (c *Client) JoinRoom(ctx context.Context, roomID, name string) (*proto.JoinResponse, error) {
	var out proto.JoinResponse
	err := c.do(ctx, http.MethodPost, "/rooms/"+roomID+"/join", proto.JoinRequest{Name: name}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Move submits a move and returns the authoritative snapshot after it.
func (c *Client) Move(ctx context.Context, roomID, name string, cell int) (*core.RoomState, error) {
	var out proto.RoomResponse
	err := c.do(ctx, http.MethodPost, "/rooms/"+roomID+"/move", proto.MoveRequest{Name: name, Cell: cell}, &out)
	if err != nil {
		return nil, err
	}
	return proto.RoomToState(out.Room), nil
}

// Reset starts a new game generation in the room.
func (c *Client) Reset(ctx context.Context, roomID string) (*core.RoomState, error) {
	var out proto.RoomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms/"+roomID+"/reset", nil, &out); err != nil {
		return nil, err
	}
	return proto.RoomToState(out.Room), nil
}

// SendChat relays a chat line; the broadcast comes back on the stream.
func (c *Client) SendChat(ctx context.Context, roomID, name, text string) error {
	return c.do(ctx, http.MethodPost, "/rooms/"+roomID+"/chat", proto.ChatRequest{Name: name, Text: text}, nil)
}

// LeaveRoom removes a participant from the roster. Best-effort on
// teardown; the authority also prunes dead stream connections itself.
func (c *Client) LeaveRoom(ctx context.Context, roomID, name string) error {
	return c.do(ctx, http.MethodPost, "/rooms/"+roomID+"/leave", proto.LeaveRequest{Name: name}, nil)
}

// GetRoom fetches the current full snapshot.
func (c *Client) GetRoom(ctx context.Context, roomID string) (*core.RoomState, error) {
	var out proto.Room
	if err := c.do(ctx, http.MethodGet, "/rooms/"+roomID, nil, &out); err != nil {
		return nil, err
	}
	return proto.RoomToState(&out), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return c.rejection(resp)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s %s: authority returned %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) rejection(resp *http.Response) error {
	rej := &core.Rejection{Code: core.ErrCodeRejected}
	switch resp.StatusCode {
	case http.StatusNotFound:
		rej.Code = core.ErrCodeRoomNotFound
	case http.StatusConflict:
		rej.Code = core.ErrCodeRoomFull
	case http.StatusBadRequest:
		rej.Code = core.ErrCodeBadRequest
	}

	var body proto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		rej.Message = body.Error
	} else {
		rej.Message = fmt.Sprintf("request rejected (%d)", resp.StatusCode)
	}

	c.log.Debug().Int("status", resp.StatusCode).Str("message", rej.Message).Msg("authority rejected action")
	return rej
}
