// Package api implements the HTTP client for the job tracker API.  Every
// call is a plain JSON request/response; failures are surfaced as *Error so
// the state layer can derive display messages from the server's message and
// the numeric status.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/job-application-tracker/internal/model"
)

// Client talks to the job tracker API.  BaseURL includes the /api prefix,
// e.g. "http://localhost:4000/api".
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New builds a Client with a sane default timeout.  Trailing slashes on the
// base URL are stripped so path joining stays predictable.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Error is a failed API call.  Message is the server-provided message when
// the response body carried one; StatusCode is zero for transport-level
// failures, in which case Cause holds the underlying error.
type Error struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("api request failed with status %d", e.StatusCode)
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "api request failed"
}

func (e *Error) Unwrap() error { return e.Cause }

// ----- payloads -----

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type TwoFactorSetupResponse struct {
	Secret string `json:"secret"`
	QR     string `json:"qr"`
}

type TwoFactorVerifyRequest struct {
	Token  string `json:"token"`
	Secret string `json:"secret,omitempty"`
}

type TwoFactorVerifyResponse struct {
	Message string `json:"message"`
}

// ----- auth calls -----

func (c *Client) Register(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", creds, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &out)
	return out, err
}

func (c *Client) SetupTwoFactor(ctx context.Context, token string) (TwoFactorSetupResponse, error) {
	var out TwoFactorSetupResponse
	err := c.do(ctx, http.MethodPost, "/auth/2fa/setup", token, nil, &out)
	return out, err
}

func (c *Client) VerifyTwoFactor(ctx context.Context, token string, req TwoFactorVerifyRequest) (TwoFactorVerifyResponse, error) {
	var out TwoFactorVerifyResponse
	err := c.do(ctx, http.MethodPost, "/auth/2fa/verify", token, req, &out)
	return out, err
}

// ----- job calls -----

func (c *Client) ListJobs(ctx context.Context, token string) ([]model.Job, error) {
	var out struct {
		Jobs []model.Job `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, "/jobs", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

func (c *Client) CreateJob(ctx context.Context, token string, in model.JobInput) (model.Job, error) {
	var out struct {
		Job model.Job `json:"job"`
	}
	err := c.do(ctx, http.MethodPost, "/jobs", token, in, &out)
	return out.Job, err
}

func (c *Client) UpdateJob(ctx context.Context, token, id string, in model.JobInput) (model.Job, error) {
	var out struct {
		Job model.Job `json:"job"`
	}
	err := c.do(ctx, http.MethodPut, "/jobs/"+id, token, in, &out)
	return out.Job, err
}

func (c *Client) UpdateJobStatus(ctx context.Context, token, id string, status model.JobStatus) (model.Job, error) {
	var out struct {
		Job model.Job `json:"job"`
	}
	body := map[string]string{"status": string(status)}
	err := c.do(ctx, http.MethodPatch, "/jobs/"+id+"/status", token, body, &out)
	return out.Job, err
}

func (c *Client) DeleteJob(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/jobs/"+id, token, nil, nil)
}

// do performs one JSON round trip.  Non-2xx responses are decoded into
// *Error using the server's {"message": ...} body when present.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Cause: err} // transport failure, no status
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
