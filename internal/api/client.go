// Package api is the remote gateway for the task-tracking service: a single
// HTTP client that attaches the session's bearer credential to every request
// addressed to the protected /api surface and leaves other requests (the
// auth endpoints) untouched.
//
// The gateway does not retry, does not refresh expired credentials, and does
// not redirect on 401; failures surface to the caller, which owns the
// reaction.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/byronguina/taskdeck/internal/model"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the root of the remote API (e.g. "http://localhost:8080").
	BaseURL string
	// Credentials supplies the bearer token at send time. It may be nil at
	// construction; set it before issuing protected requests.
	Credentials CredentialSource
	// HTTPClient is used for all requests. If nil, a client with a 15s
	// timeout is used. Its transport is wrapped with the bearer transport.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, the logrus standard
	// logger is used.
	Logger *logrus.Logger
}

// Client talks to the remote task-tracking API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a gateway for the given base URL. The credential source
// is consulted on every protected request rather than captured here, because
// the gateway usually exists before a session does.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	// Wrap whatever transport the caller supplied so the bearer credential
	// is attached uniformly.
	wrapped := *httpClient
	wrapped.Transport = &authTransport{base: httpClient.Transport, source: config.Credentials}

	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &wrapped,
		logger:     logger,
	}, nil
}

// doRequest performs one JSON round trip. A non-2xx response becomes an
// *Error carrying the status code; transport failures are returned wrapped.
// When out is non-nil the response body is decoded into it.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return fmt.Errorf("api: failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("api: %s %s: failed to read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("api request rejected")
		return &Error{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       strings.TrimSpace(string(payload)),
		}
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("api: %s %s: failed to parse response: %w", method, path, err)
		}
	}
	return nil
}

// Login authenticates with an email address.
func (c *Client) Login(ctx context.Context, email string) (*AuthResponse, error) {
	query := url.Values{"email": {email}}
	var resp AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.IsError {
		return nil, ErrLoginRejected
	}
	return &resp, nil
}

// LoginGoogle exchanges a Google ID token for a session.
func (c *Client) LoginGoogle(ctx context.Context, idToken string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/google", nil, GoogleLoginRequest{Token: idToken}, &resp); err != nil {
		return nil, fmt.Errorf("google login failed: %w", err)
	}
	if resp.IsError {
		return nil, ErrLoginRejected
	}
	return &resp, nil
}

// ListProjects returns every project. Admin scope only; the server rejects
// other roles.
func (c *Client) ListProjects(ctx context.Context) ([]ProjectResponse, error) {
	var out []ProjectResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/projects", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return out, nil
}

// ListUserProjects returns the projects owned by the given user.
func (c *Client) ListUserProjects(ctx context.Context, userID int64) ([]ProjectResponse, error) {
	var out []ProjectResponse
	path := "/api/projects/user/" + strconv.FormatInt(userID, 10)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list projects for user %d: %w", userID, err)
	}
	return out, nil
}

// GetProject fetches a single project record with fresh denormalized fields.
func (c *Client) GetProject(ctx context.Context, id int64) (*ProjectResponse, error) {
	var out ProjectResponse
	path := "/api/projects/" + strconv.FormatInt(id, 10)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return &out, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, req ProjectRequest) (*ProjectResponse, error) {
	var out ProjectResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/projects", nil, req, &out); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &out, nil
}

// UpdateProject replaces a project's editable fields.
func (c *Client) UpdateProject(ctx context.Context, id int64, req ProjectRequest) (*ProjectResponse, error) {
	var out ProjectResponse
	path := "/api/projects/" + strconv.FormatInt(id, 10)
	if err := c.doRequest(ctx, http.MethodPut, path, nil, req, &out); err != nil {
		return nil, fmt.Errorf("failed to update project %d: %w", id, err)
	}
	return &out, nil
}

// DeleteProject removes a project. Deletion is hard; there is no tombstone.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	path := "/api/projects/" + strconv.FormatInt(id, 10)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	return nil
}

// AssignUserToProject assigns a user to a project. The response carries no
// body; callers re-fetch the project record for fresh denormalized fields.
func (c *Client) AssignUserToProject(ctx context.Context, projectID, userID int64) error {
	path := "/api/projects/" + strconv.FormatInt(projectID, 10) + "/assign/" + strconv.FormatInt(userID, 10)
	if err := c.doRequest(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to assign user %d to project %d: %w", userID, projectID, err)
	}
	return nil
}

// ListProjectTasks returns the tasks of one project (admin/task-creator
// scope).
func (c *Client) ListProjectTasks(ctx context.Context, projectID int64) ([]TaskResponse, error) {
	var out []TaskResponse
	path := "/api/tasks/" + strconv.FormatInt(projectID, 10)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list tasks for project %d: %w", projectID, err)
	}
	return out, nil
}

// ListOwnerTasks returns the tasks visible to one user (read-only scope).
func (c *Client) ListOwnerTasks(ctx context.Context, userID int64) ([]TaskResponse, error) {
	var out []TaskResponse
	path := "/api/tasks/owner/" + strconv.FormatInt(userID, 10)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list tasks for owner %d: %w", userID, err)
	}
	return out, nil
}

// CreateTask creates a task. The server assigns NOT_STARTED.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	var out TaskResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/tasks", nil, req, &out); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &out, nil
}

// UpdateTask replaces a task's editable fields, status included, without the
// forward-only constraint.
func (c *Client) UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) (*TaskResponse, error) {
	var out TaskResponse
	path := "/api/tasks/" + strconv.FormatInt(id, 10)
	if err := c.doRequest(ctx, http.MethodPut, path, nil, req, &out); err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return &out, nil
}

// UpdateTaskStatus performs the dedicated status change and returns the
// fully updated record.
func (c *Client) UpdateTaskStatus(ctx context.Context, req UpdateTaskStatusRequest) (*TaskResponse, error) {
	var out TaskResponse
	if err := c.doRequest(ctx, http.MethodPut, "/api/tasks/update-status", nil, req, &out); err != nil {
		return nil, fmt.Errorf("failed to update status of task %d: %w", req.TaskID, err)
	}
	return &out, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	path := "/api/tasks/" + strconv.FormatInt(id, 10)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return nil
}

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var out []UserResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return out, nil
}

// CreateUser creates an account without a role; follow with SetUserRole.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/users", nil, req, &out); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &out, nil
}

// SetUserRole assigns the account's single role.
func (c *Client) SetUserRole(ctx context.Context, id int64, role model.Role) (*UserResponse, error) {
	var out UserResponse
	path := "/api/users/" + strconv.FormatInt(id, 10) + "/role"
	query := url.Values{"role": {string(role)}}
	if err := c.doRequest(ctx, http.MethodPut, path, query, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to set role for user %d: %w", id, err)
	}
	return &out, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	path := "/api/users/" + strconv.FormatInt(id, 10)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}
