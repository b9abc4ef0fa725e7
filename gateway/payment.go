// Package gateway holds HTTP adapters for the services checkout depends on:
// the payment gateway's initialize endpoint and the account login/profile API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"formationdesk/backend/models"
)

const maxResponseBody = 1 << 20

// PaymentClient starts hosted checkout sessions with the payment gateway.
type PaymentClient struct {
	InitURL string
	HTTP    *http.Client
}

func NewPaymentClient(initURL string, client *http.Client) *PaymentClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &PaymentClient{InitURL: initURL, HTTP: client}
}

type initResponse struct {
	CheckoutURL string `json:"checkout_url"`
	Data        struct {
		Link string `json:"link"`
	} `json:"data"`
}

// Initialize asks the gateway for a checkout URL. Non-2xx responses come back
// as *StatusError carrying a display message.
func (c *PaymentClient) Initialize(ctx context.Context, req models.PaymentRequest) (models.PaymentSession, error) {
	var out models.PaymentSession
	b, err := json.Marshal(req)
	if err != nil {
		return out, err
	}
	body, err := postJSON(ctx, c.HTTP, c.InitURL, b)
	if err != nil {
		return out, err
	}
	var resp initResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return out, fmt.Errorf("decode payment response: %w", err)
	}
	out.CheckoutURL = resp.CheckoutURL
	if out.CheckoutURL == "" {
		out.CheckoutURL = resp.Data.Link
	}
	if out.CheckoutURL == "" {
		return out, fmt.Errorf("payment response has no checkout url")
	}
	return out, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: ErrorMessage(resp.StatusCode, resp.Status, body)}
	}
	return body, nil
}
