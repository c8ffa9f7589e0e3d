package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
	"github.com/dmitrijs2005/shlokapath/internal/common"
	"github.com/dmitrijs2005/shlokapath/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const maxResponseBytes = 1 << 20

// Options configures an HTTPClient. Zero values fall back to the defaults
// observed in production: 30s per attempt, 3 attempts, 1s between them.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Attempts int
	Delay    time.Duration

	HTTPClient *http.Client
	Logger     logging.Logger
	Now        func() time.Time
}

type HTTPClient struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	attempts int
	delay    time.Duration
	log      logging.Logger
	now      func() time.Time

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", opts.BaseURL)
	}

	c := &HTTPClient{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     opts.HTTPClient,
		timeout:  opts.Timeout,
		attempts: opts.Attempts,
		delay:    opts.Delay,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	if c.attempts <= 0 {
		c.attempts = 3
	}
	if c.delay <= 0 {
		c.delay = time.Second
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type call struct {
	op     string
	method string
	path   string
	body   any
	out    any

	// auth attaches the bearer token; token overrides the stored one.
	auth    bool
	token   string
	noRetry bool
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, cl call) error {
	token := ""
	if cl.auth {
		token = cl.token
		if token == "" {
			token = c.Token()
		}
		if token == "" {
			return &common.Failure{Kind: common.ErrUnauthorized, Op: cl.op, Message: "not logged in"}
		}
		if tokenExpired(token, c.now()) {
			return &common.Failure{Kind: common.ErrUnauthorized, Op: cl.op, Message: "session expired"}
		}
	}

	var payload []byte
	if cl.body != nil {
		var err error
		payload, err = json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
	}

	attempts := c.attempts
	if cl.noRetry {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(c.delay))

	// One key for every attempt so the server can drop duplicates.
	idempotencyKey := uuid.NewString()
	attempt := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.attempt(ctx, cl, token, idempotencyKey, payload)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrNetwork) || errors.Is(err, common.ErrTimeout) {
			c.log.Debug(ctx, "api call failed", "op", cl.op, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		var f *common.Failure
		if !errors.As(err, &f) {
			return classifyTransport(cl.op, err)
		}
	}
	return err
}

func (c *HTTPClient) attempt(ctx context.Context, cl call, token, idempotencyKey string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	if cl.method != http.MethodGet {
		req.Header.Set(common.IdempotencyKeyHeaderName, idempotencyKey)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(cl.op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransport(cl.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusFailure(cl.op, resp.StatusCode, data)
	}

	if cl.out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, cl.out); err != nil {
			return &common.Failure{Kind: common.ErrServer, Op: cl.op, Status: resp.StatusCode, Message: "malformed response from server", Err: err}
		}
	}
	return nil
}

func classifyTransport(op string, err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return &common.Failure{Kind: common.ErrTimeout, Op: op, Err: err}
	default:
		return &common.Failure{Kind: common.ErrNetwork, Op: op, Err: err}
	}
}

func statusFailure(op string, status int, body []byte) error {
	kind := common.ErrServer
	switch status {
	case http.StatusUnauthorized:
		kind = common.ErrUnauthorized
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		kind = common.ErrValidation
	}

	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &common.Failure{Kind: kind, Op: op, Status: status, Message: msg}
}

// asInvalidCredentials turns a 401 from the login/register endpoints into
// ErrInvalidCredentials: there is no session to expire yet.
func asInvalidCredentials(err error) error {
	var f *common.Failure
	if errors.As(err, &f) && errors.Is(f.Kind, common.ErrUnauthorized) {
		return &common.Failure{Kind: common.ErrInvalidCredentials, Op: f.Op, Status: f.Status, Message: f.Message, Err: f.Err}
	}
	return err
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Email: creds.Email, Password: string(creds.Password)},
		out:    &res,
	})
	if err != nil {
		return nil, asInvalidCredentials(err)
	}
	if res.Token == "" {
		return nil, &common.Failure{Kind: common.ErrServer, Op: "login", Message: "server returned no token"}
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	var res models.AuthResult
	err := c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "/auth/register",
		body:   registerRequest{Name: reg.Name, Email: reg.Email, Password: string(reg.Password)},
		out:    &res,
	})
	if err != nil {
		return nil, asInvalidCredentials(err)
	}
	if res.Token == "" {
		return nil, &common.Failure{Kind: common.ErrServer, Op: "register", Message: "server returned no token"}
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *HTTPClient) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return c.do(ctx, call{op: "revoke", method: http.MethodPost, path: "/auth/logout", auth: true, token: token, noRetry: true})
}

func (c *HTTPClient) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, call{op: "get current user", method: http.MethodGet, path: "/users/me", auth: true, out: &u}); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	err := c.do(ctx, call{op: "update profile", method: http.MethodPatch, path: "/users/me", auth: true, body: upd, out: &u})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, current, next []byte) error {
	return c.do(ctx, call{
		op:     "change password",
		method: http.MethodPost,
		path:   "/users/me/password",
		auth:   true,
		body:   changePasswordRequest{CurrentPassword: string(current), NewPassword: string(next)},
	})
}

func (c *HTTPClient) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, call{op: "delete account", method: http.MethodDelete, path: "/users/me", auth: true})
}

func (c *HTTPClient) GetUserStats(ctx context.Context) (*models.StatsSnapshot, error) {
	var s models.StatsSnapshot
	if err := c.do(ctx, call{op: "get user stats", method: http.MethodGet, path: "/users/me/stats", auth: true, out: &s}); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) GetStreakHistory(ctx context.Context) ([]models.ActivityRecord, error) {
	var recs []models.ActivityRecord
	if err := c.do(ctx, call{op: "get streak history", method: http.MethodGet, path: "/users/me/streaks", auth: true, out: &recs}); err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []models.ActivityRecord{}
	}
	return recs, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, call{op: "ping", method: http.MethodGet, path: "/health", noRetry: true})
}
