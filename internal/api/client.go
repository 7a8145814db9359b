package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

// DefaultBaseURL is used when no server is configured
const DefaultBaseURL = "http://localhost:3000"

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-ID"

// ErrEmptySession is returned when sign-in succeeds without a payload
var ErrEmptySession = errors.New("sign-in returned an empty session")

// Auth carries the bearer token attached to protected requests
type Auth struct {
	Token string
}

// NewAuth builds the request auth for a signed-in session
func NewAuth(s *types.Session) Auth {
	if s == nil {
		return Auth{}
	}
	return Auth{Token: s.Token}
}

// Valid reports whether a token is present
func (a Auth) Valid() bool {
	return a.Token != ""
}

// Header returns the Authorization header value, empty when signed out
func (a Auth) Header() string {
	if !a.Valid() {
		return ""
	}
	return "bearer " + a.Token
}

// SignupRequest is the body of POST /signup
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SigninRequest is the body of POST /signin
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Desc       string    `json:"desc"`
	EstimateAt time.Time `json:"estimateAt"`
}

// Client talks to the task service
type Client struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{},
		logger:  log.Default(),
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.client = hc
	}
}

// SetLogger replaces the logger used for request failures
func (c *Client) SetLogger(logger *log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Signup registers a new user. The service may answer without a body, in
// which case the returned registration is nil.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*types.Registration, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/signup", Auth{}, nil, req, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var reg types.Registration
	if err := json.Unmarshal(raw, &reg); err != nil {
		// The registration body is informative only
		c.logger.Printf("warning: failed to decode signup response: %v", err)
		return nil, nil
	}
	return &reg, nil
}

// Signin exchanges credentials for a session
func (c *Client) Signin(ctx context.Context, req SigninRequest) (*types.Session, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/signin", Auth{}, nil, req, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrEmptySession
	}
	session, err := types.ParseSession(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

// ListTasks returns the tasks estimated up to maxDate, in service order
func (c *Client) ListTasks(ctx context.Context, auth Auth, maxDate string) ([]types.Task, error) {
	query := url.Values{}
	query.Set("date", maxDate)

	var tasks []types.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", auth, query, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	return tasks, nil
}

// CreateTask adds a task. The created task is nil when the service answers
// without a body.
func (c *Client) CreateTask(ctx context.Context, auth Auth, req CreateTaskRequest) (*types.Task, error) {
	return c.taskCall(ctx, http.MethodPost, "/tasks", auth, req)
}

// ToggleTask flips the completion of a task on the service
func (c *Client) ToggleTask(ctx context.Context, auth Auth, id int64) (*types.Task, error) {
	return c.taskCall(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d/toggle", id), auth, nil)
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, auth Auth, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), auth, nil, nil, nil)
}

// Ping checks that the service answers HTTP at all. Any status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) taskCall(ctx context.Context, method, path string, auth Auth, body any) (*types.Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, method, path, auth, nil, body, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var task types.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return &task, nil
}

// do sends one request. A nil in sends no body; out is left untouched when
// the response body is empty.
func (c *Client) do(ctx context.Context, method, path string, auth Auth, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h := auth.Header(); h != "" {
		req.Header.Set("Authorization", h)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Printf("warning: %s %s [%s] failed: %v", method, path, requestID, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{
			Status:    resp.StatusCode,
			Message:   extractMessage(respBody),
			RequestID: requestID,
		}
		c.logger.Printf("warning: %s %s [%s]: %v", method, path, requestID, apiErr)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
