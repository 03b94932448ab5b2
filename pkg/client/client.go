// Package client is a typed Go client for the case-management API, plus a
// small cache (DataStore) for interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the server at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
			body.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: body.Error}
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

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func setQuery(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// Auth

// Login authenticates and keeps the returned token for later calls.
// roleType is "practitioner" or "client".
func (c *Client) Login(ctx context.Context, email, password, roleType string) (*Session, error) {
	var s Session
	in := map[string]string{"email": email, "password": password, "roleType": roleType}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Register(ctx context.Context, in UserInput) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes the current token and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Refresh swaps the current token for a new one.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, nil, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	in := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPut, "/api/auth/password", nil, in, nil)
}

// Users

func (c *Client) Users(ctx context.Context, role string) ([]User, error) {
	q := url.Values{}
	setQuery(q, "role", role)
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/users", q, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Cases

func (c *Client) Cases(ctx context.Context, f CaseFilter) ([]Case, error) {
	q := url.Values{}
	setQuery(q, "status", f.Status)
	setQuery(q, "clientId", f.ClientID)
	setQuery(q, "staffId", f.StaffID)
	var cases []Case
	if err := c.do(ctx, http.MethodGet, "/api/cases", q, nil, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *Client) Case(ctx context.Context, id string) (*Case, error) {
	var out Case
	if err := c.do(ctx, http.MethodGet, "/api/cases/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCase(ctx context.Context, in CaseInput) (*Case, error) {
	var out Case
	if err := c.do(ctx, http.MethodPost, "/api/cases", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCase(ctx context.Context, id string, in CaseUpdate) (*Case, error) {
	var out Case
	if err := c.do(ctx, http.MethodPut, "/api/cases/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCase(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/cases/"+url.PathEscape(id), nil, nil, nil)
}

// Appointments

func (c *Client) Appointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	q := url.Values{}
	setQuery(q, "status", f.Status)
	setQuery(q, "clientId", f.ClientID)
	setQuery(q, "staffId", f.StaffID)
	setQuery(q, "caseId", f.CaseID)
	setQuery(q, "date", f.Date)
	var out []Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Appointment(ctx context.Context, id string) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodGet, "/api/appointments/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, in AppointmentUpdate) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPut, "/api/appointments/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/appointments/"+url.PathEscape(id), nil, nil, nil)
}

// Documents

func (c *Client) Documents(ctx context.Context, f DocumentFilter) ([]Document, error) {
	q := url.Values{}
	setQuery(q, "caseId", f.CaseID)
	setQuery(q, "uploadedBy", f.UploadedBy)
	var out []Document
	if err := c.do(ctx, http.MethodGet, "/api/documents", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Document(ctx context.Context, id string) (*Document, error) {
	var out Document
	if err := c.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDocument registers metadata for a file stored elsewhere.
func (c *Client) CreateDocument(ctx context.Context, in DocumentInput) (*Document, error) {
	var out Document
	if err := c.do(ctx, http.MethodPost, "/api/documents", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument sends file as multipart form data. name may be empty.
func (c *Client) UploadDocument(ctx context.Context, caseID, name, filename string, file io.Reader) (*Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("caseId", caseID); err != nil {
		return nil, err
	}
	if name != "" {
		if err := mw.WriteField("name", name); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/documents/upload", nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out Document
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadDocument returns either a presigned URL or the file body; the
// caller closes the body.
func (c *Client) DownloadDocument(ctx context.Context, id string) (string, io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id)+"/download", nil, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Del("Accept")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode != http.StatusOK || strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		defer resp.Body.Close()
		var link struct {
			URL string `json:"url"`
		}
		if err := decodeResponse(resp, &link); err != nil {
			return "", nil, err
		}
		return link.URL, nil, nil
	}
	return "", resp.Body, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/documents/"+url.PathEscape(id), nil, nil, nil)
}

// Chat

func (c *Client) Messages(ctx context.Context, peerID string) ([]ChatMessage, error) {
	q := url.Values{}
	setQuery(q, "userId", peerID)
	var out []ChatMessage
	if err := c.do(ctx, http.MethodGet, "/api/chat", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendMessage(ctx context.Context, recipientID, content string) (*ChatMessage, error) {
	var out ChatMessage
	in := map[string]string{"recipientId": recipientID, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/chat", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkRead(ctx context.Context, peerID string) (int64, error) {
	q := url.Values{}
	setQuery(q, "userId", peerID)
	var out struct {
		Updated int64 `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/chat/read", q, nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// Health returns the server status. A 503 still decodes into Health and is
// reported with a non-nil error.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &h, &APIError{Status: resp.StatusCode, Message: "service unhealthy"}
	}
	return &h, nil
}
