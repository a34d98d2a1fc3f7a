package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// APIClient talks to the maitred HTTP API
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// NewAPIClient creates a client from MAITRED_API_URL and MAITRED_TOKEN
func NewAPIClient() *APIClient {
	baseURL := os.Getenv("MAITRED_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &APIClient{
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   os.Getenv("MAITRED_TOKEN"),
	}
}

// Message is one conversation entry
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderLine is a priced line of the current order
type OrderLine struct {
	Item      string  `json:"item"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// Order is the session's current order
type Order struct {
	Lines   []OrderLine `json:"lines"`
	Total   float64     `json:"total"`
	Summary string      `json:"summary"`
}

// Session is a chat session
type Session struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	Order    Order     `json:"order"`
}

// Turn is the assistant's answer to one query
type Turn struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
}

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status code %d: %s", e.Status, e.Message)
}

// CheckHealth checks if the API is up and running
func (c *APIClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}
	return true, nil
}

// CreateSession starts a new chat session
func (c *APIClient) CreateSession() (*Session, error) {
	var sess Session
	if err := c.do(http.MethodPost, "/api/v1/sessions", nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteSession ends a chat session
func (c *APIClient) DeleteSession(id string) error {
	return c.do(http.MethodDelete, "/api/v1/sessions/"+id, nil, nil)
}

// SendMessage sends one query and returns the assistant's turn
func (c *APIClient) SendMessage(sessionID, text string) (*Turn, error) {
	var turn Turn
	body := map[string]string{"text": text}
	if err := c.do(http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages", body, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

// GetOrder retrieves the session's current order
func (c *APIClient) GetOrder(sessionID string) (*Order, error) {
	var order Order
	if err := c.do(http.MethodGet, "/api/v1/sessions/"+sessionID+"/order", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmOrder confirms the session's order and returns the customer message
func (c *APIClient) ConfirmOrder(sessionID string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(http.MethodPost, "/api/v1/sessions/"+sessionID+"/order/confirm", nil, &resp)
	return resp.Message, err
}

// CancelOrder cancels the session's order and returns the customer message
func (c *APIClient) CancelOrder(sessionID string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(http.MethodPost, "/api/v1/sessions/"+sessionID+"/order/cancel", nil, &resp)
	return resp.Message, err
}

func (c *APIClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		// The API puts the customer-facing text in "message" when it has one
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			if payload.Message != "" {
				apiErr.Message = payload.Message
			} else if payload.Error != "" {
				apiErr.Message = payload.Error
			}
		}
		if out != nil {
			_ = json.Unmarshal(data, out)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
