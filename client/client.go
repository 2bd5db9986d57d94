// Package client is the Go client for the messaging API: a poll-based sync
// protocol plus the send pipeline. There is no persistent data connection;
// every read is a fresh, idempotent query and staleness is bounded by how
// often the caller triggers a sync.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"jobmatch/internal/messaging"

	"github.com/google/uuid"
)

// Client issues authenticated requests against one messaging server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client. The timeout bounds every sync read and send; a
// timed-out send surfaces as a transport failure.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type roomListResponse struct {
	Rooms []messaging.RoomEntry `json:"rooms"`
}

type transcriptResponse struct {
	Messages []messaging.Message `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Rooms is the room-list sync.
func (c *Client) Rooms(ctx context.Context) ([]messaging.RoomEntry, error) {
	var res roomListResponse
	if err := c.do(ctx, http.MethodGet, "/api/rooms", nil, &res); err != nil {
		return nil, err
	}
	return res.Rooms, nil
}

// Messages is the transcript sync. With a cursor only messages strictly
// after it come back, so steady-state polling moves very little data.
func (c *Client) Messages(ctx context.Context, roomID uuid.UUID, after *int64) ([]messaging.Message, error) {
	path := "/api/rooms/" + roomID.String() + "/messages"
	if after != nil {
		path += "?after=" + strconv.FormatInt(*after, 10)
	}
	var res transcriptResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

// Send commits one message. No implicit retry: a blind repeat after an
// ambiguous failure may duplicate the message, so retries are left to an
// explicit user action.
func (c *Client) Send(ctx context.Context, roomID uuid.UUID, content string) (messaging.Message, error) {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return messaging.Message{}, err
	}
	var msg messaging.Message
	path := "/api/rooms/" + roomID.String() + "/messages"
	if err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), &msg); err != nil {
		return messaging.Message{}, err
	}
	return msg, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", messaging.ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return statusError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// statusError maps a response back onto the shared error taxonomy.
func statusError(res *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(res.Body).Decode(&body)

	var kind error
	switch res.StatusCode {
	case http.StatusBadRequest:
		kind = messaging.ErrValidation
	case http.StatusUnauthorized:
		kind = messaging.ErrUnauthenticated
	case http.StatusForbidden:
		kind = messaging.ErrForbidden
	case http.StatusNotFound:
		kind = messaging.ErrNotFound
	default:
		kind = messaging.ErrTransport
	}
	if body.Error != "" {
		return fmt.Errorf("%w: %s", kind, body.Error)
	}
	return fmt.Errorf("%w: status %d", kind, res.StatusCode)
}
