package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

// StripeClient talks to the Stripe Checkout Sessions API. Only the fields
// the storefront needs are sent and decoded.
type StripeClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func NewStripeClient(secretKey string, timeout time.Duration, logger *log.Logger) *StripeClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &StripeClient{
		secretKey:  secretKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithBaseURL points the client at a different host. Used by tests.
func (c *StripeClient) WithBaseURL(base string) *StripeClient {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

func (c *StripeClient) CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", in.SuccessURL)
	form.Set("cancel_url", in.CancelURL)
	form.Set("client_reference_id", in.ClientReferenceID)
	for i, line := range in.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.FormatInt(line.Quantity, 10))
		form.Set(prefix+"[price_data][currency]", strings.ToLower(line.Currency))
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(line.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", line.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *StripeClient) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *StripeClient) do(req *http.Request) (*Session, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("gateway: %s %s error=%v", req.Method, req.URL.Path, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		c.logger.Printf("gateway: %s %s status=%d message=%q", req.Method, req.URL.Path, resp.StatusCode, apiErr.Error.Message)
		return nil, &Error{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", ErrUnavailable, err)
	}
	return &session, nil
}
