// Package api is a typed client for the GophMail HTTP API.
//
// Every call returns nil or an error wrapping one of the common sentinel
// errors (match with errors.Is), or ErrUnavailable when the server could not
// be reached. The message sent by the server is kept in the error text.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/common"
)

var ErrUnavailable = errors.New("server unavailable")

type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	Token    string
	Username string
}

// Client is safe for concurrent use. It holds no session state; callers pass
// the token to each protected call.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Signup(ctx context.Context, username, password string) error {
	return c.post(ctx, "/api/createusr", "", credentialsRequest{username, password}, nil, nil)
}

// Login returns a fresh session. An unknown user yields common.ErrorNotFound
// and a wrong password common.ErrorUnauthorized.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var resp struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	loginStatus := map[int]error{http.StatusUnauthorized: common.ErrorUnauthorized}

	if err := c.post(ctx, "/api/login", "", credentialsRequest{username, password}, &resp, loginStatus); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, Username: resp.Username}, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.post(ctx, "/api/logout", token, struct{}{}, nil, nil)
}

func (c *Client) ListInbox(ctx context.Context, token string) ([]Message, error) {
	var resp struct {
		Messages []Message `json:"messages"`
	}
	if err := c.post(ctx, "/api/getmsgs", token, struct{}{}, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage returns the id of the new message.
func (c *Client) SendMessage(ctx context.Context, token, to, subject, body string) (string, error) {
	req := struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}{to, subject, body}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/api/createmsg", token, req, &resp, nil); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) DeleteMessage(ctx context.Context, token, id string) error {
	req := struct {
		ID string `json:"id"`
	}{id}
	return c.post(ctx, "/api/delmsg", token, req, nil, nil)
}

// post sends in as JSON and decodes a 200 response into out (when not nil).
// overrides replaces the default status-to-error mapping for some codes.
func (c *Client) post(ctx context.Context, path, token string, in, out any, overrides map[int]error) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, overrides)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response, overrides map[int]error) error {
	var e struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
	if e.Error == "" {
		e.Error = http.StatusText(resp.StatusCode)
	}

	sentinel, ok := overrides[resp.StatusCode]
	if !ok {
		sentinel = sentinelFor(resp.StatusCode)
	}
	return fmt.Errorf("%w: %s", sentinel, e.Error)
}

func sentinelFor(code int) error {
	switch code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return common.ErrorMalformedInput
	case http.StatusUnauthorized:
		return common.ErrorUnauthenticated
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	default:
		return common.ErrorInternal
	}
}
