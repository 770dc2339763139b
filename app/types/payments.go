package types

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// maxPrice keeps every supported currency within an int64 Rial amount.
var maxPrice = decimal.New(1, 14)

// CreatePaymentRequest carries the purchase data handed over by the checkout.
// It binds from JSON and from form posts.
type CreatePaymentRequest struct {
	PurchaseKey  string `json:"purchase_key" form:"purchase_key" validate:"required,max=64"`
	Email        string `json:"email" form:"email" validate:"required,email"`
	Price        string `json:"price" form:"price" validate:"required"`
	Currency     string `json:"currency" form:"currency" validate:"max=32"`
	CartKey      string `json:"cart_key" form:"cart_key" validate:"max=64"`
	CartDetails  string `json:"cart_details" form:"cart_details"`
	PurchaseDate string `json:"purchase_date" form:"purchase_date"`

	price        decimal.Decimal
	purchaseDate time.Time
}

func NewCreatePaymentRequestFromContext(ctx echo.Context) (*CreatePaymentRequest, error) {
	var body CreatePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PurchaseKey = strings.TrimSpace(body.PurchaseKey)
	body.Email = strings.TrimSpace(body.Email)
	body.Price = strings.TrimSpace(body.Price)
	body.Currency = strings.TrimSpace(body.Currency)
	body.CartKey = strings.TrimSpace(body.CartKey)
	body.PurchaseDate = strings.TrimSpace(body.PurchaseDate)

	return &body, nil
}

func (r *CreatePaymentRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}

	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return errors.New("price must be a number")
	}
	if !price.IsPositive() {
		return errors.New("price must be > 0")
	}
	if price.GreaterThan(maxPrice) {
		return errors.New("price must be at most " + maxPrice.String())
	}
	r.price = price

	if r.PurchaseDate != "" {
		purchaseDate, err := time.Parse(time.RFC3339, r.PurchaseDate)
		if err != nil {
			return errors.New("purchase_date must be RFC3339")
		}
		r.purchaseDate = purchaseDate
	}

	return nil
}

func (r *CreatePaymentRequest) GetPurchaseKey() string    { return r.PurchaseKey }
func (r *CreatePaymentRequest) GetEmail() string          { return r.Email }
func (r *CreatePaymentRequest) GetPrice() decimal.Decimal { return r.price }
func (r *CreatePaymentRequest) GetCurrency() string       { return r.Currency }
func (r *CreatePaymentRequest) GetCartKey() string        { return r.CartKey }
func (r *CreatePaymentRequest) GetCartDetails() string    { return r.CartDetails }
func (r *CreatePaymentRequest) GetPurchaseDate() time.Time {
	return r.purchaseDate
}

// VerifyPaymentRequest is the buyer's return from IDPay. IDPay posts the fields
// back, but a GET return carries them in the query string.
type VerifyPaymentRequest struct {
	Id      string
	OrderId string
	Token   string
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) *VerifyPaymentRequest {
	return &VerifyPaymentRequest{
		Id:      strings.TrimSpace(formOrQuery(ctx, "id")),
		OrderId: strings.TrimSpace(formOrQuery(ctx, "order_id")),
		Token:   strings.TrimSpace(ctx.QueryParam("token")),
	}
}

func (r *VerifyPaymentRequest) GetId() string      { return r.Id }
func (r *VerifyPaymentRequest) GetOrderId() string { return r.OrderId }
func (r *VerifyPaymentRequest) GetToken() string   { return r.Token }

// IsGatewayCallback reports whether the request carries the IDPay routing flag.
func IsGatewayCallback(ctx echo.Context, flag string) bool {
	raw := strings.TrimSpace(ctx.QueryParam(flag))
	if raw == "" {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return strings.EqualFold(raw, "yes")
	}
	return enabled
}

func formOrQuery(ctx echo.Context, name string) string {
	if v := ctx.FormValue(name); v != "" {
		return v
	}
	return ctx.QueryParam(name)
}

type GetOrderRequest struct {
	Id uint64
}

func NewGetOrderRequestFromContext(ctx echo.Context) (*GetOrderRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetOrderRequest{Id: id}, nil
}

func (r *GetOrderRequest) GetId() uint64 { return r.Id }

func (r *GetOrderRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid order id")
	}
	return nil
}
