package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/messagely/internal/client/models"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/netx"
)

// HTTPClient is a Client over the JSON API. It is safe for concurrent use.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) setToken(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

// Logout forgets the token. Tokens are not revoked server side.
func (c *HTTPClient) Logout() { c.setToken("") }

// do sends a request and decodes a 2xx body into out. auth requires a token.
func (c *HTTPClient) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	req, err := netx.NewJSONRequest(ctx, method, c.baseURL+path, in)
	if err != nil {
		return err
	}

	if auth {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	return netx.DecodeJSON(resp, out)
}

func decodeAPIError(resp *http.Response) error {
	defer resp.Body.Close()

	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if json.Unmarshal(data, &body) != nil || body.Error.Message == "" {
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error.Message}
}

func (c *HTTPClient) Register(ctx context.Context, in models.RegisterRequest) (*models.PublicUser, error) {
	var out struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/register", false, in, &out); err != nil {
		return nil, err
	}
	c.setToken(out.Token)
	return &out.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	in := map[string]string{"username": username, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", false, in, &out); err != nil {
		return err
	}
	c.setToken(out.Token)
	return nil
}

func (c *HTTPClient) Users(ctx context.Context) ([]models.PublicUser, error) {
	var out struct {
		Users []models.PublicUser `json:"users"`
	}
	err := c.do(ctx, http.MethodGet, "/users", true, nil, &out)
	return out.Users, err
}

func (c *HTTPClient) User(ctx context.Context, username string) (*models.UserDetail, error) {
	var out struct {
		User models.UserDetail `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username), true, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *HTTPClient) Inbox(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	var out struct {
		Messages []models.ReceivedMessage `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/to", true, nil, &out)
	return out.Messages, err
}

func (c *HTTPClient) Outbox(ctx context.Context, username string) ([]models.SentMessage, error) {
	var out struct {
		Messages []models.SentMessage `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/from", true, nil, &out)
	return out.Messages, err
}

func (c *HTTPClient) Message(ctx context.Context, id int64) (*models.MessageDetail, error) {
	var out struct {
		Message models.MessageDetail `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/messages/%d", id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

func (c *HTTPClient) Send(ctx context.Context, to, body string) (*models.Message, error) {
	in := map[string]string{"to_username": to, "msgBody": body}
	var out struct {
		Message models.Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/messages", true, in, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

func (c *HTTPClient) MarkRead(ctx context.Context, id int64) (*models.Message, error) {
	var out struct {
		Message models.Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/messages/%d/read", id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

var _ Client = (*HTTPClient)(nil)
