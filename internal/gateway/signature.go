package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// BuildCreateSignature signs a payment-creation request. The raw string joins
// the fields in a fixed alphabetical order as key=value pairs.
func BuildCreateSignature(accessKey, secretKey string, req *PaymentRequest) string {
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		accessKey, req.Amount, req.ExtraData, req.IPNURL, req.OrderID,
		req.OrderInfo, req.PartnerCode, req.RedirectURL, req.RequestID, req.RequestType,
	)
	return hmacSHA256Hex(secretKey, raw)
}

// BuildCallbackSignature signs an IPN callback payload with the callback's
// own canonical field ordering.
func BuildCallbackSignature(accessKey, secretKey string, p *CallbackPayload) string {
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%s",
		accessKey, p.Amount, p.ExtraData, p.Message, p.OrderID, p.OrderInfo,
		p.OrderType, p.PartnerCode, p.PayType, p.RequestID, p.ResponseTime,
		p.ResultCode, p.TransID,
	)
	return hmacSHA256Hex(secretKey, raw)
}

// VerifyCallbackSignature reports whether the payload carries a valid
// signature. Hex digests compare case-insensitively.
func VerifyCallbackSignature(accessKey, secretKey string, p *CallbackPayload) bool {
	expected := BuildCallbackSignature(accessKey, secretKey, p)
	return hmac.Equal(
		[]byte(strings.ToLower(expected)),
		[]byte(strings.ToLower(p.Signature)),
	)
}

func hmacSHA256Hex(secret, raw string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
