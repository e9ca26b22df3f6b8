// Package client is the Go client for the Promptly backend: a thin HTTP API
// wrapper plus the conversation view-model used by the terminal frontend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// User mirrors the backend's user payload.
type User struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// ChatMessage mirrors one history log record.
type ChatMessage struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ChatID    string    `json:"chatId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat is one assembled conversation from GET /api/history.
type Chat struct {
	ChatID      string        `json:"chatId"`
	Messages    []ChatMessage `json:"messages"`
	LastMessage ChatMessage   `json:"lastMessage"`
}

// SendResult is the outcome of POST /api/chat.
type SendResult struct {
	Response string `json:"response"`
	ChatID   string `json:"chatId"`
}

// API talks to the Promptly backend. Login and Signup store the bearer token
// for subsequent calls.
type API struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates an API client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *API {
	return &API{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Token returns the bearer token captured at login/signup.
func (a *API) Token() string {
	return a.token
}

// Login authenticates and stores the returned bearer token.
func (a *API) Login(ctx context.Context, email, password string) (User, error) {
	var out struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	err := a.do(ctx, http.MethodPost, "/api/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return User{}, err
	}
	a.token = out.Token
	return out.User, nil
}

// Signup registers a new account and stores the returned bearer token.
func (a *API) Signup(ctx context.Context, email, password, firstName, lastName string) (User, error) {
	var out struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	err := a.do(ctx, http.MethodPost, "/api/signup", nil, map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
	}, &out)
	if err != nil {
		return User{}, err
	}
	a.token = out.Token
	return out.User, nil
}

// Send posts one message. A blank chatID starts a new conversation; the
// returned result carries the id the server filed it under.
func (a *API) Send(ctx context.Context, chatID, message string) (SendResult, error) {
	headers := map[string]string{}
	if chatID != "" {
		headers["X-Chat-Id"] = chatID
	}

	var out SendResult
	err := a.do(ctx, http.MethodPost, "/api/chat", headers, map[string]string{
		"message": message,
	}, &out)
	if err != nil {
		return SendResult{}, err
	}
	return out, nil
}

// History fetches all conversations for the logged-in user.
func (a *API) History(ctx context.Context) ([]Chat, error) {
	var out struct {
		Chats []Chat `json:"chats"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/history", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

func (a *API) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != "" {
			return fmt.Errorf("%s", failure.Error)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
