package gateway

import (
	"context"
	"encoding/base64"
)

// PaymentRequest is the payment-creation request sent to the wallet gateway
type PaymentRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
}

// PaymentResponse is the wallet gateway's payment-creation response
type PaymentResponse struct {
	PartnerCode  string `json:"partnerCode"`
	RequestID    string `json:"requestId"`
	OrderID      string `json:"orderId"`
	Amount       int64  `json:"amount"`
	ResponseTime int64  `json:"responseTime"`
	Message      string `json:"message"`
	ResultCode   int    `json:"resultCode"`
	PayURL       string `json:"payUrl"`
	Deeplink     string `json:"deeplink"`
	QRCodeURL    string `json:"qrCodeUrl"`
}

// CallbackPayload is the IPN callback the wallet gateway posts after the
// customer pays
type CallbackPayload struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      string `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// EncodeExtraData returns the opaque extension blob sent with payment
// requests. The protocol requires base64 of a JSON object even when empty.
func EncodeExtraData() string {
	return base64.StdEncoding.EncodeToString([]byte("{}"))
}

// WalletGateway abstracts the outbound side of the wallet protocol
type WalletGateway interface {
	// CreatePayment requests a payment link for an order. The gateway fills
	// the configured partner fields and signs the request.
	CreatePayment(ctx context.Context, orderID, requestID string, amount int64) (*PaymentResponse, error)

	// Name returns the gateway name
	Name() string
}
