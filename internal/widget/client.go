package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vittamhq/loan-widget/internal/doctype"
)

// Requirement is a document the assistant is asking the user to supply.
type Requirement = doctype.Requirement

// SessionInfo is the result of opening a session.
type SessionInfo struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Stage     string `json:"stage"`
}

// ChatReply is one assistant turn.
type ChatReply struct {
	Response   string        `json:"response"`
	Documents  []Requirement `json:"documents"`
	SanctionID string        `json:"sanction_id"`
	Stage      string        `json:"stage"`
}

// HistoryEntry is one transcript turn as stored server-side.
type HistoryEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadResult describes one stored document.
type UploadResult struct {
	DocumentID string `json:"document_id"`
	DocID      string `json:"doc_id"`
	DocName    string `json:"doc_name"`
	Status     string `json:"verification_status"`
}

// DocumentResult is the verification outcome for one document. Verified is
// authoritative; Status is informational and may be absent.
type DocumentResult struct {
	DocumentID string `json:"document_id"`
	DocID      string `json:"doc_id"`
	DocName    string `json:"doc_name"`
	Verified   bool   `json:"verified"`
	Status     string `json:"status"`
	Feedback   string `json:"feedback"`
}

// VerifyOutcome aggregates verification across a session's documents.
type VerifyOutcome struct {
	SessionID     string           `json:"session_id"`
	AllVerified   bool             `json:"all_verified"`
	Total         int              `json:"total_documents"`
	VerifiedCount int              `json:"verified_count"`
	RejectedCount int              `json:"rejected_count"`
	Results       []DocumentResult `json:"results"`
}

// Client is the typed request layer for the backend. It is the only widget
// component permitted to issue network calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With().Str("component", "widget.client").Logger(),
	}
}

// CreateSession opens a new conversation and returns the welcome message.
func (c *Client) CreateSession(ctx context.Context) (*SessionInfo, error) {
	var out SessionInfo
	if err := c.doJSON(ctx, http.MethodPost, "/session", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendChatMessage sends one user turn and returns the assistant reply.
func (c *Client) SendChatMessage(ctx context.Context, sessionID, message string) (*ChatReply, error) {
	body := map[string]string{"session_id": sessionID, "message": message}
	var out ChatReply
	if err := c.doJSON(ctx, http.MethodPost, "/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the stored transcript for a session.
func (c *Client) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	var out struct {
		SessionID string         `json:"session_id"`
		History   []HistoryEntry `json:"history"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/session/"+sessionID+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// DeleteSession removes a session and everything attached to it.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/session/"+sessionID, nil, nil)
}

// UploadDocument submits one file for a canonical doc id.
func (c *Client) UploadDocument(ctx context.Context, sessionID, docID, fileName string, contents []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("session_id", sessionID); err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	if err := mw.WriteField("doc_id", docID); err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	if _, err := fw.Write(contents); err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, &NetworkError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	if err := c.send(req, "upload", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments returns the documents stored for a session.
func (c *Client) ListDocuments(ctx context.Context, sessionID string) ([]UploadResult, error) {
	var out struct {
		SessionID string         `json:"session_id"`
		Documents []UploadResult `json:"documents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+sessionID, nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// VerifyDocument triggers verification of a single document by its id.
func (c *Client) VerifyDocument(ctx context.Context, documentID string) (*DocumentResult, error) {
	var out DocumentResult
	if err := c.doJSON(ctx, http.MethodPost, "/documents/verify/"+documentID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifySessionDocuments triggers server-side verification of every document
// uploaded so far. Idempotent; documents that already passed are not re-run.
func (c *Client) VerifySessionDocuments(ctx context.Context, sessionID string) (*VerifyOutcome, error) {
	var out VerifyOutcome
	if err := c.doJSON(ctx, http.MethodPost, "/documents/"+sessionID+"/verify", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &NetworkError{Op: op, Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, op, out)
}

// envelope is the server's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (c *Client) send(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("request failed")
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return &NetworkError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
		}
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		serr := &StatusError{Op: op, StatusCode: resp.StatusCode, Message: errorText(env.Error)}
		c.logger.Error().Int("status", resp.StatusCode).Str("op", op).Str("message", serr.Message).Msg("backend rejected request")
		return serr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("malformed payload: %w", err)}
		}
	}
	return nil
}

// errorText renders the envelope's error field, which may be a plain string
// or a field map.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
