package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invoiceBack/internal/models"
)

// Client sends transactional email through the Brevo REST API.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	senderEmail string
	senderName  string
	baseURL     string
}

// NewClient constructs a Brevo client. An empty baseURL selects the public API.
func NewClient(httpClient *http.Client, apiKey, senderEmail, senderName, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = "https://api.brevo.com/v3"
	}
	return &Client{
		httpClient:  httpClient,
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

type address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type attachment struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

type sendRequest struct {
	Sender      address      `json:"sender"`
	To          []address    `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
	Attachment  []attachment `json:"attachment,omitempty"`
}

// Send posts one message to /smtp/email. Non-2xx responses are returned as
// errors carrying the API's message.
func (c *Client) Send(ctx context.Context, email models.Email) error {
	if c.apiKey == "" {
		return errors.New("brevo: api key is not configured")
	}

	senderName := email.SenderName
	if senderName == "" {
		senderName = c.senderName
	}
	payload := sendRequest{
		Sender:      address{Name: senderName, Email: c.senderEmail},
		To:          []address{{Email: email.To}},
		Subject:     email.Subject,
		HTMLContent: email.HTML,
	}
	if email.Attachment != nil {
		payload.Attachment = []attachment{{
			Content: base64.StdEncoding.EncodeToString(email.Attachment.Content),
			Name:    email.Attachment.Name,
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("brevo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("brevo: %s (%s)", apiErr.Message, resp.Status)
		}
		return fmt.Errorf("brevo: unexpected status %s", resp.Status)
	}
	return nil
}
