package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/courtside/field-booking/internal/domain"
)

// PaymentLinkResponse carries the wallet gateway's payment link for a pending
// booking
type PaymentLinkResponse struct {
	BookingID  string `json:"booking_id"`
	RequestID  string `json:"request_id"`
	Amount     int64  `json:"amount"`
	PayURL     string `json:"pay_url"`
	Deeplink   string `json:"deeplink"`
	QRCodeURL  string `json:"qr_code_url"`
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// PaymentResponse is the API view of a settled payment
type PaymentResponse struct {
	ID              string          `json:"id"`
	BookingID       string          `json:"booking_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	Status          string          `json:"status"`
	TransactionCode string          `json:"transaction_code"`
	PaidAt          time.Time       `json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a payment to its response form
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:              p.ID,
		BookingID:       p.BookingID,
		Amount:          p.Amount,
		Method:          string(p.Method),
		Status:          string(p.Status),
		TransactionCode: p.TransactionCode,
		PaidAt:          p.PaidAt,
		CreatedAt:       p.CreatedAt,
	}
}
