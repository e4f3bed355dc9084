package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/courtside/field-booking/pkg/retry"
	"github.com/courtside/field-booking/pkg/telemetry"
)

// WalletClientConfig holds configuration for the wallet gateway client
type WalletClientConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	EndpointURL string
	RedirectURL string
	IPNURL      string
	RequestType string
	OrderInfo   string
	Timeout     time.Duration
}

// WalletClient implements WalletGateway against the wallet's HTTP API
type WalletClient struct {
	config *WalletClientConfig
	client *http.Client
}

// NewWalletClient creates a wallet gateway client
func NewWalletClient(config *WalletClientConfig) (*WalletClient, error) {
	if config == nil {
		return nil, fmt.Errorf("wallet config is required")
	}
	if config.PartnerCode == "" || config.AccessKey == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("wallet partner code, access key and secret key are required")
	}
	if config.EndpointURL == "" {
		return nil, fmt.Errorf("wallet endpoint URL is required")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WalletClient{
		config: config,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// CreatePayment posts a signed payment-creation request and decodes the
// gateway's response. Transient transport failures are retried; HTTP 4xx
// responses are not.
func (c *WalletClient) CreatePayment(ctx context.Context, orderID, requestID string, amount int64) (*PaymentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "WalletClient.CreatePayment")
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet.order_id", orderID),
		attribute.Int64("wallet.amount", amount),
	)

	req := &PaymentRequest{
		PartnerCode: c.config.PartnerCode,
		AccessKey:   c.config.AccessKey,
		RequestID:   requestID,
		Amount:      amount,
		OrderID:     orderID,
		OrderInfo:   c.config.OrderInfo,
		RedirectURL: c.config.RedirectURL,
		IPNURL:      c.config.IPNURL,
		ExtraData:   EncodeExtraData(),
		RequestType: c.config.RequestType,
	}
	req.Signature = BuildCreateSignature(c.config.AccessKey, c.config.SecretKey, req)

	body, err := json.Marshal(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to encode payment request: %w", err)
	}

	var resp *PaymentResponse
	err = retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		r, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create wallet payment: %w", err)
	}

	span.SetAttributes(attribute.Int("wallet.result_code", resp.ResultCode))
	return resp, nil
}

func (c *WalletClient) post(ctx context.Context, body []byte) (*PaymentResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode >= 500 {
		return nil, fmt.Errorf("wallet gateway returned status %d", httpResp.StatusCode)
	}
	if httpResp.StatusCode >= 400 {
		return nil, retry.Permanent(fmt.Errorf("wallet gateway rejected request with status %d", httpResp.StatusCode))
	}

	resp := &PaymentResponse{}
	if err := json.Unmarshal(respBody, resp); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode wallet response: %w", err))
	}
	return resp, nil
}

// Name returns the gateway name
func (c *WalletClient) Name() string {
	return "wallet"
}

var _ WalletGateway = (*WalletClient)(nil)
