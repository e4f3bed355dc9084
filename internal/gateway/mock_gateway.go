package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGateway implements WalletGateway for testing and load testing. It hands
// out deterministic pay URLs and records every request it sees.
type MockGateway struct {
	mu       sync.Mutex
	requests []MockRequest

	// FailWith, when set, is returned from CreatePayment instead of a
	// response
	FailWith error

	// ResultCode is the result code stamped on responses, zero meaning
	// success
	ResultCode int
}

// MockRequest captures one CreatePayment call
type MockRequest struct {
	OrderID   string
	RequestID string
	Amount    int64
}

// NewMockGateway creates a mock wallet gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// CreatePayment records the request and returns a canned response
func (g *MockGateway) CreatePayment(ctx context.Context, orderID, requestID string, amount int64) (*PaymentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailWith != nil {
		return nil, g.FailWith
	}

	g.requests = append(g.requests, MockRequest{
		OrderID:   orderID,
		RequestID: requestID,
		Amount:    amount,
	})

	message := "Success"
	if g.ResultCode != 0 {
		message = "Failed"
	}
	return &PaymentResponse{
		PartnerCode:  "MOCK",
		RequestID:    requestID,
		OrderID:      orderID,
		Amount:       amount,
		ResponseTime: time.Now().UnixMilli(),
		Message:      message,
		ResultCode:   g.ResultCode,
		PayURL:       fmt.Sprintf("https://wallet.example.com/pay/%s", orderID),
		Deeplink:     fmt.Sprintf("wallet://pay/%s", orderID),
		QRCodeURL:    fmt.Sprintf("https://wallet.example.com/qr/%s", orderID),
	}, nil
}

// Requests returns a copy of the recorded requests
func (g *MockGateway) Requests() []MockRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]MockRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}

var _ WalletGateway = (*MockGateway)(nil)
