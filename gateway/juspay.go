package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OrderStatus is the closed set of statuses the gateway reports for an
// order. Anything outside this set still flows through as-is: the handler
// has a default arm for statuses added by the provider later.
type OrderStatus string

const (
	StatusCharged              OrderStatus = "CHARGED"
	StatusPending              OrderStatus = "PENDING"
	StatusPendingVBV           OrderStatus = "PENDING_VBV"
	StatusAuthorizationFailed  OrderStatus = "AUTHORIZATION_FAILED"
	StatusAuthenticationFailed OrderStatus = "AUTHENTICATION_FAILED"
)

// APIError is a rejection coming from the gateway's own API. Its message is
// safe to pass through to the caller; every other failure is surfaced as an
// opaque error instead.
type APIError struct {
	StatusCode int
	Code       string `json:"error_code"`
	Message    string `json:"error_message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gateway error %s", e.Code)
}

type SessionRequest struct {
	OrderID             string  `json:"order_id"`
	Amount              float64 `json:"amount"`
	PaymentPageClientID string  `json:"payment_page_client_id"`
	CustomerID          string  `json:"customer_id"`
	Action              string  `json:"action"`
	ReturnURL           string  `json:"return_url"`
	Currency            string  `json:"currency"`
}

// Order is the slice of the gateway's order object this backend consumes.
type Order struct {
	OrderID string      `json:"order_id"`
	Status  OrderStatus `json:"status"`
	Amount  float64     `json:"amount"`
}

// Client talks to the hosted-payment-page API. Construct once at startup and
// inject; it is a stateless HTTPS client with no teardown.
type Client struct {
	baseURL    string
	merchantID string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, merchantID, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		merchantID: merchantID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateOrderSession opens a hosted payment page session and returns the
// gateway's session payload as-is.
func (c *Client) CreateOrderSession(ctx context.Context, sr SessionRequest) (map[string]interface{}, error) {
	payload, err := json.Marshal(sr)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/session", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var session map[string]interface{}
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session response: %w", err)
	}
	return session, nil
}

// OrderStatus queries the live state of an order by its gateway order id.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (*Order, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/orders/"+orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("version", "2023-06-30")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w", err)
	}
	return &order, nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.apiKey+":")))
	req.Header.Set("x-merchantid", c.merchantID)
}

func parseAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" && apiErr.Code == "" {
		apiErr.Message = "Something went wrong"
	}
	return apiErr
}
