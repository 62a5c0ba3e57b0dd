package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// InvoiceEmail is the payload sent to the mail API when an invoice goes out.
type InvoiceEmail struct {
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	To            string  `json:"to"`
	CompanyName   string  `json:"company_name"`
	TotalAmount   float64 `json:"total_amount"`
	TotalDisplay  string  `json:"total_display"`
	Currency      string  `json:"currency"`
	DueDate       string  `json:"due_date"`
	Notes         string  `json:"notes,omitempty"`
}

// Client talks to the external mail API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Enabled reports whether a mail API is configured. When false, sends are
// queued to the outbox instead of attempted.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Send posts the invoice email to the mail API.
func (c *Client) Send(email *InvoiceEmail) error {
	jsonData, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice email: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/emails/invoice", c.baseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Failed to send invoice email",
			zap.Error(err),
			zap.String("invoice_number", email.InvoiceNumber),
			zap.Duration("duration", duration),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("Invoice email sent",
			zap.String("invoice_number", email.InvoiceNumber),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return nil
	}

	errMsg := fmt.Sprintf("mail API returned status %d: %s", resp.StatusCode, string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Error("Mail API authentication failed",
			zap.Int("status_code", resp.StatusCode))
		return &AuthError{Message: errMsg, StatusCode: resp.StatusCode}
	case http.StatusTooManyRequests:
		c.logger.Warn("Mail API rate limited",
			zap.Int("status_code", resp.StatusCode))
		return &RateLimitError{Message: errMsg, StatusCode: resp.StatusCode}
	default:
		c.logger.Error("Mail API error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)))
		return &SendError{Message: errMsg, StatusCode: resp.StatusCode}
	}
}

type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

type RateLimitError struct {
	Message    string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type SendError struct {
	Message    string
	StatusCode int
}

func (e *SendError) Error() string {
	return e.Message
}
