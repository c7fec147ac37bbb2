package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrorKind classifies carrier errors so callers can tell configuration
// mistakes from bad input and from carrier-side failures.
type ErrorKind string

const (
	ErrorConfig     ErrorKind = "config"
	ErrorValidation ErrorKind = "validation"
	ErrorAPI        ErrorKind = "api"
)

// Error is a typed carrier error.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("carrier %s error: %s", e.Kind, e.Message)
}

// SendResult holds the carrier's response to a successful send.
type SendResult struct {
	SID    string
	Status string
}

// Provider is the interface for SMS delivery providers (Twilio, etc.)
type Provider interface {
	SendSMS(ctx context.Context, to, from, body string) (*SendResult, error)
}

// Client is a Twilio-compatible REST provider.
type Client struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new carrier client
func NewClient(accountSID, authToken, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"message"`
}

// SendSMS transmits one message through the carrier API. All failures are
// returned as *Error with the appropriate kind.
func (c *Client) SendSMS(ctx context.Context, to, from, body string) (*SendResult, error) {
	if from == "" {
		return nil, &Error{Kind: ErrorConfig, Message: "sender phone number not configured"}
	}
	if to == "" {
		return nil, &Error{Kind: ErrorValidation, Message: "recipient phone number is required"}
	}
	if body == "" {
		return nil, &Error{Kind: ErrorValidation, Message: "message body is required"}
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Kind: ErrorAPI, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrorAPI, Message: fmt.Sprintf("failed to send SMS: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrorAPI, Message: fmt.Sprintf("failed to read carrier response: %v", err)}
	}

	var decoded messageResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, &Error{Kind: ErrorAPI, Message: fmt.Sprintf("failed to decode carrier response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := decoded.ErrorMessage
		if msg == "" {
			msg = fmt.Sprintf("carrier API returned status %d", resp.StatusCode)
		}
		return nil, &Error{Kind: ErrorAPI, Message: fmt.Sprintf("failed to send SMS: %s", msg)}
	}

	return &SendResult{SID: decoded.SID, Status: decoded.Status}, nil
}
