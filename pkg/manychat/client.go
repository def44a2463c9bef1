package manychat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"leadbridge/internal/retry"
	"leadbridge/pkg/manychat/types"
)

const (
	defaultTimeout      = 10 * time.Second
	sendMaxAttempts     = 3
	sendInitialDelay    = 1000 * time.Millisecond
	sendDelayMultiplier = 2.0
)

// StatusError is returned for non-2xx API responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("manychat request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the ManyChat REST API
type Client struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	sendBackoff *retry.Backoff
}

// NewClient creates a ManyChat API client. The timeout applies per attempt,
// including each attempt of a retried message send.
func NewClient(baseURL, apiKey string, timeout time.Duration) types.ContactClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		sendBackoff: retry.NewBackoff(retry.BackoffConfig{
			InitialDelay: sendInitialDelay,
			MaxDelay:     10 * time.Second,
			Multiplier:   sendDelayMultiplier,
			MaxAttempts:  sendMaxAttempts,
			Jitter:       false,
		}),
	}
}

func (c *Client) GetContacts(ctx context.Context, page int, filter string) ([]types.Contact, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if filter != "" {
		q.Set("filter", filter)
	}

	path := "/contacts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result types.ContactsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return result.Contacts, nil
}

func (c *Client) GetContact(ctx context.Context, contactID string, includeHistory bool) (*types.ContactWithHistory, error) {
	path := "/contact/" + url.PathEscape(contactID)
	if includeHistory {
		path += "?include_messages=true"
	}

	var result types.ContactWithHistory
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch contact %s: %w", contactID, err)
	}
	return &result, nil
}

func (c *Client) GetContactByPhone(ctx context.Context, number string) (*types.Contact, error) {
	var result types.Contact
	err := c.doJSON(ctx, http.MethodGet, "/contact/phone/"+url.PathEscape(number), nil, &result)
	if err != nil {
		// 404 is a valid "not found" response, not an error
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up contact by phone: %w", err)
	}
	return &result, nil
}

func (c *Client) CreateContact(ctx context.Context, number, name string) (*types.Contact, error) {
	req := types.CreateContactRequest{Number: number, Name: name}

	var result types.Contact
	if err := c.doJSON(ctx, http.MethodPost, "/contact", req, &result); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &result, nil
}

func (c *Client) UpdateContact(ctx context.Context, contactID string, update types.UpdateContactRequest) (*types.Contact, error) {
	var result types.Contact
	if err := c.doJSON(ctx, http.MethodPut, "/contact/"+url.PathEscape(contactID), update, &result); err != nil {
		return nil, fmt.Errorf("failed to update contact %s: %w", contactID, err)
	}
	return &result, nil
}

// SendMessage posts an outgoing message to the contact's thread. Up to three
// attempts are made; only 503/504 responses and transport failures are
// retried, with delays of 1s and then 2s between attempts.
func (c *Client) SendMessage(ctx context.Context, contactID, message string) (*types.SendMessageResponse, error) {
	req := types.SendMessageRequest{Message: message, Type: "outgoing"}
	path := "/contact/" + url.PathEscape(contactID) + "/messages"

	var result types.SendMessageResponse
	attempts := 0
	err := c.sendBackoff.RetryWithPredicate(ctx, func() error {
		attempts++
		return c.doJSON(ctx, http.MethodPost, path, req, &result)
	}, isTransientSendError)

	if err != nil {
		if attempts >= sendMaxAttempts {
			return nil, fmt.Errorf("failed to send message after %d attempts: %w", attempts, err)
		}
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &result, nil
}

func (c *Client) SendText(ctx context.Context, number, text string) (*types.SendMessageResponse, error) {
	req := types.SendTextRequest{Number: number, Text: text}

	var result types.SendMessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/message/text", req, &result); err != nil {
		return nil, fmt.Errorf("failed to send text to number: %w", err)
	}
	return &result, nil
}

// isTransientSendError reports whether a send failure is worth retrying.
// 503 and 504 responses are transient; any other non-2xx status fails
// immediately. Transport errors and timeouts carry no status and are treated
// like transient failures.
func isTransientSendError(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusServiceUnavailable || se.StatusCode == http.StatusGatewayTimeout
	}
	return true
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
