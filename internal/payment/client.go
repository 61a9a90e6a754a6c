// Package payment is the adapter for the external payment provider.  It
// confirms a payment the client already started (payment key, order id,
// amount) and translates every provider failure into a *model.PaymentError
// so callers never see provider-specific error shapes.
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/room-escape-reservation/internal/model"
)

const (
	confirmPath = "/v1/payments/confirm"
	cancelPath  = "/v1/payments/%s/cancel"

	mismatchCancelTimeout = 10 * time.Second
)

// Config holds the provider settings.  Secret is the provider's secret key;
// it is sent as the user part of HTTP basic auth with an empty password.
type Config struct {
	BaseURL        string
	Secret         string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Request is the confirmation payload sent to the provider.
type Request struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// Validate checks the request before any network call is made.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.PaymentKey) == "":
		return fmt.Errorf("%w: payment key is required", model.ErrValidation)
	case strings.TrimSpace(r.OrderID) == "":
		return fmt.Errorf("%w: order id is required", model.ErrValidation)
	case r.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", model.ErrValidation)
	}
	return nil
}

type confirmResponse struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	TotalAmount int64  `json:"totalAmount"`
	Status      string `json:"status"`
	ApprovedAt  string `json:"approvedAt"`
}

// Client calls the payment provider over HTTP.
type Client struct {
	baseURL       string
	authorization string
	http          *http.Client
	idempotency   func() string
	now           func() time.Time
}

// NewClient builds a Client with the configured connect and read timeouts.
// The connect timeout bounds dialing; the read timeout bounds the wait for
// response headers.  Their sum caps the whole exchange.
func NewClient(cfg Config) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConnsPerHost:   8,
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		authorization: "Basic " + basicToken(cfg.Secret),
		http:          &http.Client{Transport: transport, Timeout: cfg.ConnectTimeout + cfg.ReadTimeout},
		idempotency:   uuid.NewString,
		now:           time.Now,
	}
}

// basicToken encodes secret + ":" the way the provider expects.
func basicToken(secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(secret + ":"))
}

// Authorize confirms the payment with the provider.  It returns the
// approved payment, or a *model.PaymentError when the provider rejects the
// charge, answers with an unexpected body or cannot be reached in time.
func (c *Client) Authorize(ctx context.Context, req Request) (*model.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out confirmResponse
	if err := c.post(ctx, confirmPath, req, &out); err != nil {
		return nil, err
	}
	p := &model.Payment{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		ApprovedAt: c.now().UTC(),
	}
	if out.PaymentKey != "" {
		p.PaymentKey = out.PaymentKey
	}
	if out.TotalAmount != 0 && out.TotalAmount != req.Amount {
		// The provider already approved the charge, so it is voided before
		// the mismatch is reported.
		msg := fmt.Sprintf("provider approved %d, expected %d", out.TotalAmount, req.Amount)
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mismatchCancelTimeout)
		defer cancel()
		if err := c.Cancel(cctx, p.PaymentKey, "amount mismatch"); err != nil {
			msg += "; cancel failed: " + err.Error()
		}
		return nil, &model.PaymentError{Status: http.StatusOK, Code: "AMOUNT_MISMATCH", Message: msg}
	}
	if t, err := time.Parse(time.RFC3339, out.ApprovedAt); err == nil {
		p.ApprovedAt = t.UTC()
	}
	return p, nil
}

// Cancel voids an approved payment.  It is used to compensate when a
// reservation cannot be stored after the charge went through.
func (c *Client) Cancel(ctx context.Context, paymentKey, reason string) error {
	body := map[string]string{"cancelReason": reason}
	return c.post(ctx, fmt.Sprintf(cancelPath, url.PathEscape(paymentKey)), body, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode payment request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.authorization)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", c.idempotency())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return transportError(err)
		}
		return &model.PaymentError{Status: resp.StatusCode, Code: "INVALID_RESPONSE", Message: "unreadable provider response"}
	}
	return nil
}
