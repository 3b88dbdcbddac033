package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/internal/infra/wire"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

const maxResponseBytes = 1 << 20

// Client talks to the order management REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  logger.Logger
}

var _ outbound.OrderManagement = (*Client)(nil)

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createOrderBody struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"orderDescription"`
	DeliveryAddress string          `json:"deliveryAddress"`
	RecipientName   string          `json:"recipientName"`
	RecipientPhone  string          `json:"recipientPhone"`
	RiderName       string          `json:"riderName,omitempty"`
	RiderPhone      string          `json:"riderPhone,omitempty"`
	PaymentMethod   string          `json:"payment_method"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
}

type invoiceBody struct {
	ID               string `json:"id"`
	InvoiceID        string `json:"invoice_id"`
	PaymentURL       string `json:"payment_url"`
	PaymentURLCamel  string `json:"paymentUrl"`
	LightningInvoice string `json:"lightning_invoice"`
	Request          string `json:"request"`
}

type envelope struct {
	Success *bool           `json:"success"`
	Error   string          `json:"error"`
	Order   json.RawMessage `json:"order"`
	Invoice *invoiceBody    `json:"payment_invoice"`
}

func (c *Client) CreateOrder(ctx context.Context, req outbound.CreateOrderRequest) (outbound.CreatedOrder, error) {
	body := createOrderBody{
		Amount:          req.Amount,
		Currency:        req.Currency,
		Description:     req.Description,
		DeliveryAddress: req.DeliveryAddress,
		RecipientName:   req.RecipientName,
		RecipientPhone:  req.RecipientPhone,
		RiderName:       req.RiderName,
		RiderPhone:      req.RiderPhone,
		PaymentMethod:   string(req.PaymentMethod),
		CustomerEmail:   req.BuyerEmail,
	}
	env, raw, err := c.do(ctx, http.MethodPost, "/api/orders", body, req.IdempotencyKey)
	if err != nil {
		return outbound.CreatedOrder{}, err
	}
	o, err := decodeOrder(env, raw)
	if err != nil {
		return outbound.CreatedOrder{}, err
	}

	out := outbound.CreatedOrder{Order: o}
	if inv := env.Invoice; inv != nil {
		out.Invoice = &outbound.PaymentInvoice{
			ID:               wire.FirstNonEmpty(inv.InvoiceID, inv.ID),
			PaymentURL:       wire.FirstNonEmpty(inv.PaymentURL, inv.PaymentURLCamel),
			LightningInvoice: wire.FirstNonEmpty(inv.LightningInvoice, inv.Request),
		}
	}
	return out, nil
}

func (c *Client) SetStatus(ctx context.Context, orderID string, status entity.Status) (entity.Order, error) {
	body := map[string]string{"status": string(status)}
	return c.orderCall(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(orderID)+"/status", body)
}

func (c *Client) AssignDriver(ctx context.Context, req outbound.AssignDriverRequest) (entity.Order, error) {
	return c.orderCall(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(req.OrderID)+"/assign-driver", req)
}

func (c *Client) ConfirmDelivery(ctx context.Context, orderID string) (entity.Order, error) {
	return c.orderCall(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/confirm-delivery", struct{}{})
}

func (c *Client) orderCall(ctx context.Context, method, path string, body any) (entity.Order, error) {
	env, raw, err := c.do(ctx, method, path, body, "")
	if err != nil {
		return entity.Order{}, err
	}
	return decodeOrder(env, raw)
}

// decodeOrder accepts both an enveloped order and a bare order document.
func decodeOrder(env envelope, raw []byte) (entity.Order, error) {
	payload := json.RawMessage(raw)
	if len(env.Order) > 0 && string(env.Order) != "null" {
		payload = env.Order
	}
	o, err := wire.DecodeOrder(payload)
	if err != nil {
		return entity.Order{}, fmt.Errorf("decode order: %w", err)
	}
	return o, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, idempotencyKey string) (envelope, []byte, error) {
	var env envelope

	payload, err := json.Marshal(body)
	if err != nil {
		return env, nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return env, nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return env, nil, ctx.Err()
		}
		return env, nil, fmt.Errorf("%w: %v", outbound.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return env, nil, ctx.Err()
		}
		return env, nil, fmt.Errorf("%w: read response: %v", outbound.ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "order api call",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.String("request_id", requestID),
		logger.Duration("duration", time.Since(start)),
	)

	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		_ = json.Unmarshal(trimmed, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := env.Error
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return env, raw, &RejectedError{StatusCode: resp.StatusCode, Reason: reason}
	}
	if env.Success != nil && !*env.Success {
		reason := env.Error
		if reason == "" {
			reason = "request not accepted"
		}
		return env, raw, &RejectedError{StatusCode: resp.StatusCode, Reason: reason}
	}
	return env, raw, nil
}
