package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIError is a structured error body from the backend ({"message": ...}).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Client talks to the FirstDraft backend. The bearer token is read from the
// provider on every request, so a login that happens after construction is
// picked up without rebuilding the client.
type Client struct {
	http  *resty.Client
	token func() string
}

func NewClient(baseURL string, timeout time.Duration, token func() string) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	c := &Client{token: token}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if t := c.token(); t != "" {
				req.SetHeader("Authorization", "Bearer "+t)
			}
			return nil
		})
	return c
}

func apiError(res *resty.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(res.Body(), &body)
	return &APIError{Status: res.StatusCode(), Message: body.Message}
}

// AuthResponse is the login/signup payload.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/auth/login")
	if err != nil {
		return AuthResponse{}, fmt.Errorf("login: %w", err)
	}
	if !res.IsSuccess() {
		return AuthResponse{}, apiError(res)
	}
	return out, nil
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (AuthResponse, error) {
	var out AuthResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name, "email": email, "password": password}).
		SetResult(&out).
		Post("/auth/signup")
	if err != nil {
		return AuthResponse{}, fmt.Errorf("signup: %w", err)
	}
	if !res.IsSuccess() {
		return AuthResponse{}, apiError(res)
	}
	return out, nil
}

// Sessions lists the chat sessions known to the backend for an identity.
func (c *Client) Sessions(ctx context.Context, email string) ([]ChatSession, error) {
	var out struct {
		Sessions []struct {
			SessionID    string `json:"sessionId"`
			SessionTitle string `json:"sessionTitle"`
		} `json:"sessions"`
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/chat/sessions/" + email)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if !res.IsSuccess() {
		return nil, apiError(res)
	}
	sessions := make([]ChatSession, 0, len(out.Sessions))
	for _, s := range out.Sessions {
		sessions = append(sessions, ChatSession{SessionID: s.SessionID, Title: s.SessionTitle})
	}
	return sessions, nil
}

// SessionMessages fetches the full message history of one session.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	var out struct {
		Messages []ChatMessage `json:"messages"`
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/chat/session/" + sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !res.IsSuccess() {
		return nil, apiError(res)
	}
	return out.Messages, nil
}

// SendMessageRequest is one user turn headed for the backend.
type SendMessageRequest struct {
	Message        string
	SessionID      string
	Email          string
	ScreenplayType string
	Images         []Attachment
}

// SendMessageResponse is what the backend produced for a turn.
type SendMessageResponse struct {
	Response     string `json:"response"`
	SessionID    string `json:"sessionId"`
	SessionTitle string `json:"sessionTitle"`
}

// SendMessage submits a turn. Plain JSON when there are no images, multipart
// with the same field names plus the image files otherwise.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (SendMessageResponse, error) {
	var out SendMessageResponse

	r := c.http.R().SetContext(ctx).SetResult(&out)
	if len(req.Images) == 0 {
		body := map[string]string{
			"message":   req.Message,
			"sessionId": req.SessionID,
			"email":     req.Email,
		}
		if req.ScreenplayType != "" {
			body["screenplayType"] = req.ScreenplayType
		}
		r.SetBody(body)
	} else {
		fields := map[string]string{
			"message":   req.Message,
			"sessionId": req.SessionID,
			"email":     req.Email,
		}
		if req.ScreenplayType != "" {
			fields["screenplayType"] = req.ScreenplayType
		}
		r.SetMultipartFormData(fields)
		for _, img := range req.Images {
			f, err := os.Open(img.Path)
			if err != nil {
				return SendMessageResponse{}, fmt.Errorf("attach %s: %w", img.Path, err)
			}
			defer f.Close()
			name := img.Name
			if name == "" {
				name = filepath.Base(img.Path)
			}
			r.SetFileReader("images", name, f)
		}
	}

	res, err := r.Post("/chat/message")
	if err != nil {
		return SendMessageResponse{}, fmt.Errorf("send message: %w", err)
	}
	if !res.IsSuccess() {
		return SendMessageResponse{}, apiError(res)
	}
	return out, nil
}
