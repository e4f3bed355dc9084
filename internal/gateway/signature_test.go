package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessKey = "access-key"
	testSecretKey = "secret-key"
)

func testCallback() *CallbackPayload {
	p := &CallbackPayload{
		PartnerCode:  "PARTNER",
		OrderID:      "booking-1",
		RequestID:    "req-1",
		Amount:       100000,
		OrderInfo:    "Field booking payment",
		OrderType:    "momo_wallet",
		TransID:      "trans-1",
		ResultCode:   0,
		Message:      "Success",
		PayType:      "qr",
		ResponseTime: 1700000000000,
		ExtraData:    EncodeExtraData(),
	}
	p.Signature = BuildCallbackSignature(testAccessKey, testSecretKey, p)
	return p
}

func TestBuildCreateSignature(t *testing.T) {
	req := &PaymentRequest{
		PartnerCode: "PARTNER",
		AccessKey:   testAccessKey,
		RequestID:   "req-1",
		Amount:      100000,
		OrderID:     "booking-1",
		OrderInfo:   "Field booking payment",
		RedirectURL: "https://example.com/return",
		IPNURL:      "https://example.com/ipn",
		ExtraData:   EncodeExtraData(),
		RequestType: "captureWallet",
	}

	got := BuildCreateSignature(testAccessKey, testSecretKey, req)

	// Fields join in alphabetical order as key=value pairs
	raw := "accessKey=access-key&amount=100000&extraData=" + EncodeExtraData() +
		"&ipnUrl=https://example.com/ipn&orderId=booking-1" +
		"&orderInfo=Field booking payment&partnerCode=PARTNER" +
		"&redirectUrl=https://example.com/return&requestId=req-1&requestType=captureWallet"
	mac := hmac.New(sha256.New, []byte(testSecretKey))
	mac.Write([]byte(raw))
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, got)
}

func TestVerifyCallbackSignature(t *testing.T) {
	t.Run("valid signature verifies", func(t *testing.T) {
		p := testCallback()
		assert.True(t, VerifyCallbackSignature(testAccessKey, testSecretKey, p))
	})

	t.Run("comparison ignores hex case", func(t *testing.T) {
		p := testCallback()
		p.Signature = strings.ToUpper(p.Signature)
		assert.True(t, VerifyCallbackSignature(testAccessKey, testSecretKey, p))
	})

	t.Run("tampered amount fails", func(t *testing.T) {
		p := testCallback()
		p.Amount = 1
		assert.False(t, VerifyCallbackSignature(testAccessKey, testSecretKey, p))
	})

	t.Run("tampered order id fails", func(t *testing.T) {
		p := testCallback()
		p.OrderID = "booking-2"
		assert.False(t, VerifyCallbackSignature(testAccessKey, testSecretKey, p))
	})

	t.Run("tampered signature fails", func(t *testing.T) {
		p := testCallback()
		p.Signature = strings.Repeat("0", len(p.Signature))
		assert.False(t, VerifyCallbackSignature(testAccessKey, testSecretKey, p))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		p := testCallback()
		assert.False(t, VerifyCallbackSignature(testAccessKey, "other-secret", p))
	})
}

func TestEncodeExtraData(t *testing.T) {
	// base64 of an empty JSON object
	require.Equal(t, "e30=", EncodeExtraData())
}
