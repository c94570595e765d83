// Package postmark sends transactional email through the Postmark HTTP API.
package postmark

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/provider"
)

const (
	defaultURL   = "https://api.postmarkapp.com/email"
	tokenHeader  = "X-Postmark-Server-Token"
	maxErrorBody = 4 << 10
)

// Client posts single messages to Postmark.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the public Postmark endpoint.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithURL(defaultURL, token, timeout, logger)
}

// NewClientWithURL creates a Client with a custom endpoint (for testing).
func NewClientWithURL(url, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "postmark"),
	}
}

type apiAttachment struct {
	Name        string `json:"Name"`
	Content     string `json:"Content"`
	ContentType string `json:"ContentType"`
}

type apiMessage struct {
	From        string          `json:"From"`
	To          string          `json:"To"`
	Subject     string          `json:"Subject"`
	HTMLBody    string          `json:"HtmlBody,omitempty"`
	TextBody    string          `json:"TextBody,omitempty"`
	Tag         string          `json:"Tag,omitempty"`
	Attachments []apiAttachment `json:"Attachments,omitempty"`
}

type apiResponse struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
	MessageID string `json:"MessageID"`
}

// Send delivers one message. 4xx responses wrap provider.ErrRejected;
// 5xx and network failures are returned as plain errors so callers may retry.
func (c *Client) Send(ctx context.Context, msg provider.Email) error {
	body, err := json.Marshal(toAPI(msg))
	if err != nil {
		return fmt.Errorf("postmark: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("postmark: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("postmark: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("postmark: read body: %w", err)
	}

	var out apiResponse
	_ = json.Unmarshal(raw, &out)

	switch {
	case resp.StatusCode == http.StatusOK && out.ErrorCode == 0:
		c.log.DebugContext(ctx, "email accepted",
			slog.String("to", msg.To),
			slog.String("message_id", out.MessageID),
			slog.Int("attachments", len(msg.Attachments)),
		)
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("postmark: unexpected status %d: %s", resp.StatusCode, out.Message)
	default:
		return fmt.Errorf("postmark: status %d code %d: %s: %w", resp.StatusCode, out.ErrorCode, out.Message, provider.ErrRejected)
	}
}

func toAPI(msg provider.Email) apiMessage {
	out := apiMessage{
		From:     msg.From,
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: msg.HTMLBody,
		TextBody: msg.TextBody,
		Tag:      msg.Tag,
	}
	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		out.Attachments = append(out.Attachments, apiAttachment{
			Name:        a.Name,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: ct,
		})
	}
	return out
}
