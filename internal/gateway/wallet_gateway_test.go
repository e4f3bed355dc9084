package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClientConfig(endpoint string) *WalletClientConfig {
	return &WalletClientConfig{
		PartnerCode: "PARTNER",
		AccessKey:   testAccessKey,
		SecretKey:   testSecretKey,
		EndpointURL: endpoint,
		RedirectURL: "https://example.com/return",
		IPNURL:      "https://example.com/ipn",
		RequestType: "captureWallet",
		OrderInfo:   "Field booking payment",
	}
}

func TestWalletClientCreatePayment(t *testing.T) {
	var received PaymentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		// Response uses the gateway's own field casing
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"PartnerCode": "PARTNER",
			"RequestId": "` + received.RequestID + `",
			"OrderId": "` + received.OrderID + `",
			"Amount": 100000,
			"ResponseTime": 1700000000000,
			"Message": "Success",
			"ResultCode": 0,
			"PayUrl": "https://wallet.example.com/pay/abc",
			"Deeplink": "wallet://pay/abc",
			"QrCodeUrl": "https://wallet.example.com/qr/abc"
		}`))
	}))
	defer server.Close()

	client, err := NewWalletClient(testClientConfig(server.URL))
	require.NoError(t, err)

	resp, err := client.CreatePayment(context.Background(), "booking-1", "req-1", 100000)
	require.NoError(t, err)

	assert.Equal(t, "booking-1", received.OrderID)
	assert.Equal(t, "req-1", received.RequestID)
	assert.Equal(t, int64(100000), received.Amount)
	assert.Equal(t, EncodeExtraData(), received.ExtraData)
	assert.Equal(t, BuildCreateSignature(testAccessKey, testSecretKey, &received), received.Signature)

	assert.Equal(t, 0, resp.ResultCode)
	assert.Equal(t, "https://wallet.example.com/pay/abc", resp.PayURL)
	assert.Equal(t, "wallet://pay/abc", resp.Deeplink)
	assert.Equal(t, int64(100000), resp.Amount)
}

func TestWalletClientRejectsClientError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewWalletClient(testClientConfig(server.URL))
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), "booking-1", "req-1", 100000)
	require.Error(t, err)
	// 4xx responses are not retried
	assert.Equal(t, 1, calls)
}

func TestNewWalletClientValidation(t *testing.T) {
	_, err := NewWalletClient(nil)
	assert.Error(t, err)

	cfg := testClientConfig("https://wallet.example.com")
	cfg.SecretKey = ""
	_, err = NewWalletClient(cfg)
	assert.Error(t, err)

	cfg = testClientConfig("")
	_, err = NewWalletClient(cfg)
	assert.Error(t, err)
}
