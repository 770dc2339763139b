package provider

import (
	"context"
	"fmt"
)

// Credentials are resolved per call so a configuration change does not need a new client.
type Credentials struct {
	APIKey  string
	Sandbox bool
}

type CreateInput struct {
	Credentials

	OrderID     uint64
	Amount      int64
	Phone       string
	Description string
	CallbackURL string
}

type CreateOutput struct {
	PaymentID string
	Link      string
}

type InquiryInput struct {
	Credentials

	PaymentID string
	OrderID   uint64
}

type InquiryOutput struct {
	PaymentID string
	OrderID   string
	TrackID   string
	CardNo    string
	Status    int
	Amount    int64
}

type Provider interface {
	Code() string
	CreatePayment(ctx context.Context, input *CreateInput) (*CreateOutput, error)
	Inquire(ctx context.Context, input *InquiryInput) (*InquiryOutput, error)
}

// APIError describes a failed exchange with the processor. StatusCode is 0 when no
// HTTP response was received.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("idpay request failed: status=%d message=%s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("idpay request failed: status=%d message=%s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
