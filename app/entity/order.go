package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending = "pending"
	OrderStatusPublish = "publish"
	OrderStatusFailed  = "failed"
)

const (
	MetaPaymentID     = "idpay_payment_id"
	MetaPaymentLink   = "idpay_payment_link"
	MetaTrackID       = "idpay_track_id"
	MetaStatus        = "idpay_status"
	MetaPaymentCardNo = "idpay_payment_card_no"
)

type Order struct {
	ID uint64

	PurchaseKey string
	Email       string

	Price    decimal.Decimal
	Currency string

	Status string

	CartKey      string
	CartDetails  string
	PurchaseDate time.Time

	Notes    []OrderNote
	Metadata map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderNote struct {
	ID uint64

	OrderID uint64
	Content string

	CreatedAt time.Time
}

func (o *Order) IsPending() bool {
	return o != nil && o.Status == OrderStatusPending
}
