package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-idpay/app/entity"
	"github.com/vibast-solutions/ms-go-idpay/app/factory"
	"github.com/vibast-solutions/ms-go-idpay/app/provider"
	"github.com/vibast-solutions/ms-go-idpay/app/repository"
	"github.com/vibast-solutions/ms-go-idpay/config"
)

const (
	defaultBatchSize      = int32(100)
	defaultPendingRefTTL  = time.Hour
	defaultPendingTimeout = 24 * time.Hour

	// Query flag that routes a callback to this gateway.
	CallbackFlag = "verify_idpay_edd_gateway"

	unsupportedCurrencyMessage = "Selected currency is not supported."
	currencyMismatchMessage    = "Order currency does not match the store currency."
	amountOutOfRangeMessage    = "Order amount is out of range."
	redirectingMessage         = "Redirecting to the payment gateway."
	pendingReferenceMessage    = "Payment reference could not be stored."
	UnresolvedOrderMessage     = "The information sent is not correct."
)

type createPaymentRequest interface {
	GetPurchaseKey() string
	GetEmail() string
	GetPrice() decimal.Decimal
	GetCurrency() string
	GetCartKey() string
	GetCartDetails() string
	GetPurchaseDate() time.Time
}

type orderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uint64) (*entity.Order, error)
	TransitionStatus(ctx context.Context, id uint64, status string) error
	AddNote(ctx context.Context, id uint64, content string) error
	SetMetadata(ctx context.Context, id uint64, key, value string) error
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Order, error)
}

type cartRepository interface {
	Empty(ctx context.Context, cartKey string) error
}

type pendingPaymentRepository interface {
	Put(ctx context.Context, token string, orderID uint64, ttl time.Duration) error
	Take(ctx context.Context, token string) (uint64, bool, error)
}

// Configuration is the gateway configuration for a single call.
type Configuration struct {
	APIKey  string
	Sandbox bool

	StoreCurrency   string
	CallbackURL     string
	CheckoutPageURL string
	SuccessPageURL  string
	FailurePageURL  string
}

func (c Configuration) credentials() provider.Credentials {
	return provider.Credentials{APIKey: c.APIKey, Sandbox: c.Sandbox}
}

// RedirectOutcome tells the caller where to send the buyer after CreatePayment.
// ErrorMessage is set when the buyer goes back to checkout.
type RedirectOutcome struct {
	Order        *entity.Order
	RedirectURL  string
	ErrorMessage string
}

type VerificationOutcome struct {
	Order        *entity.Order
	RedirectURL  string
	ErrorMessage string
}

type PaymentService struct {
	orderRepo   orderRepository
	cartRepo    cartRepository
	pendingRepo pendingPaymentRepository
	gateway     provider.Provider
	paymentsCfg config.PaymentsConfig
	logger      logrus.FieldLogger

	newToken func() string
	now      func() time.Time
}

func NewPaymentService(
	orderRepo orderRepository,
	cartRepo cartRepository,
	pendingRepo pendingPaymentRepository,
	gateway provider.Provider,
	paymentsCfg config.PaymentsConfig,
) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		pendingRepo: pendingRepo,
		gateway:     gateway,
		paymentsCfg: paymentsCfg,
		logger:      factory.NewModuleLogger("payment-service"),
		newToken:    uuid.NewString,
		now:         time.Now,
	}
}

func (s *PaymentService) CreatePayment(ctx context.Context, req createPaymentRequest, cfg Configuration) (*RedirectOutcome, error) {
	now := s.now().UTC()

	// Orders are always priced in the store currency. A posted currency is only
	// accepted as a confirmation of it.
	currency := strings.TrimSpace(cfg.StoreCurrency)
	if posted := strings.TrimSpace(req.GetCurrency()); posted != "" && !SameCurrency(posted, currency) {
		s.logger.WithFields(logrus.Fields{"posted_currency": posted, "store_currency": currency}).Warn("purchase currency rejected")
		return &RedirectOutcome{RedirectURL: cfg.CheckoutPageURL, ErrorMessage: currencyMismatchMessage}, ErrCurrencyMismatch
	}
	purchaseDate := req.GetPurchaseDate()
	if purchaseDate.IsZero() {
		purchaseDate = now
	}

	order := &entity.Order{
		PurchaseKey:  strings.TrimSpace(req.GetPurchaseKey()),
		Email:        strings.TrimSpace(req.GetEmail()),
		Price:        req.GetPrice(),
		Currency:     currency,
		Status:       entity.OrderStatusPending,
		CartKey:      strings.TrimSpace(req.GetCartKey()),
		CartDetails:  req.GetCartDetails(),
		PurchaseDate: purchaseDate.UTC(),
		Metadata:     map[string]string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.WithError(err).WithField("purchase_key", order.PurchaseKey).Error("order insertion failed")
		return &RedirectOutcome{RedirectURL: cfg.CheckoutPageURL}, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}
	if order.ID == 0 {
		return &RedirectOutcome{RedirectURL: cfg.CheckoutPageURL}, fmt.Errorf("%w: ledger returned no id", ErrOrderCreation)
	}

	logger := s.logger.WithField("order_id", order.ID)

	if !IsSupportedCurrency(order.Currency) {
		s.failOrder(ctx, order, unsupportedCurrencyMessage)
		return s.backToCheckout(order, cfg, unsupportedCurrencyMessage), ErrUnsupportedCurrency
	}
	amount := rialAmount(order.Price, order.Currency)
	if amount == 0 {
		logger.WithField("price", order.Price.String()).Warn("order amount out of range")
		s.failOrder(ctx, order, amountOutOfRangeMessage)
		return s.backToCheckout(order, cfg, amountOutOfRangeMessage), ErrAmountOutOfRange
	}

	// The reference is stored before the remote call so a callback can never
	// arrive for an order that cannot be resolved.
	token := s.newToken()
	if err := s.pendingRepo.Put(ctx, token, order.ID, s.pendingRefTTL()); err != nil {
		logger.WithError(err).Error("pending payment reference not stored")
		s.failOrder(ctx, order, pendingReferenceMessage)
		return s.backToCheckout(order, cfg, pendingReferenceMessage), fmt.Errorf("%w: %v", ErrPendingReference, err)
	}

	out, err := s.gateway.CreatePayment(ctx, &provider.CreateInput{
		Credentials: cfg.credentials(),
		OrderID:     order.ID,
		Amount:      amount,
		Description: fmt.Sprintf("Order number #%d", order.ID),
		CallbackURL: BuildCallbackURL(cfg.CallbackURL, token),
	})
	if err != nil {
		status, message := provider.StatusAndMessage(err)
		logger.WithError(err).WithField("status", status).Warn("idpay payment creation failed")
		s.failOrder(ctx, order, fmt.Sprintf("%d - %s", status, message))
		return s.backToCheckout(order, cfg, message), fmt.Errorf("%w: %v", ErrRemoteGateway, err)
	}

	s.addNote(ctx, order, "Transaction ID: "+out.PaymentID)
	s.addNote(ctx, order, redirectingMessage)
	s.setMetadata(ctx, order, entity.MetaPaymentID, out.PaymentID)
	s.setMetadata(ctx, order, entity.MetaPaymentLink, out.Link)

	return &RedirectOutcome{Order: order, RedirectURL: out.Link}, nil
}

func (s *PaymentService) GetOrder(ctx context.Context, id uint64) (*entity.Order, error) {
	if id == 0 {
		return nil, ErrInvalidRequest
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

var maxRialSource = decimal.NewFromInt(math.MaxInt64)

func rialAmount(price decimal.Decimal, currency string) int64 {
	if !price.IsPositive() || price.GreaterThan(maxRialSource) {
		return 0
	}
	return NormalizeAmount(price.IntPart(), currency)
}

// BuildCallbackURL appends the routing flag and the pending reference token to base.
func BuildCallbackURL(base, token string) string {
	base = strings.TrimSpace(base)
	parsed, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + CallbackFlag + "=1&token=" + url.QueryEscape(token)
	}

	query := parsed.Query()
	query.Set(CallbackFlag, "1")
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func (s *PaymentService) backToCheckout(order *entity.Order, cfg Configuration, message string) *RedirectOutcome {
	return &RedirectOutcome{
		Order:        order,
		RedirectURL:  cfg.CheckoutPageURL,
		ErrorMessage: message,
	}
}

// failOrder records a single note and moves the order to failed.
func (s *PaymentService) failOrder(ctx context.Context, order *entity.Order, note string) {
	s.addNote(ctx, order, note)
	if err := s.transition(ctx, order, entity.OrderStatusFailed); err != nil && !errors.Is(err, repository.ErrOrderNotPending) {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("order status update failed")
	}
}

func (s *PaymentService) addNote(ctx context.Context, order *entity.Order, content string) {
	if err := s.orderRepo.AddNote(ctx, order.ID, content); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("order note not stored")
		return
	}
	order.Notes = append(order.Notes, entity.OrderNote{
		OrderID:   order.ID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	})
}

func (s *PaymentService) setMetadata(ctx context.Context, order *entity.Order, key, value string) {
	if err := s.orderRepo.SetMetadata(ctx, order.ID, key, value); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"order_id": order.ID, "key": key}).Warn("order metadata not stored")
		return
	}
	if order.Metadata == nil {
		order.Metadata = map[string]string{}
	}
	order.Metadata[key] = value
}

func (s *PaymentService) transition(ctx context.Context, order *entity.Order, status string) error {
	if err := s.orderRepo.TransitionStatus(ctx, order.ID, status); err != nil {
		return err
	}
	order.Status = status
	order.UpdatedAt = s.now().UTC()
	return nil
}

func (s *PaymentService) pendingRefTTL() time.Duration {
	if s.paymentsCfg.PendingRefTTL <= 0 {
		return defaultPendingRefTTL
	}
	return s.paymentsCfg.PendingRefTTL
}

func (s *PaymentService) batchSize() int32 {
	if s.paymentsCfg.JobBatchSize <= 0 {
		return defaultBatchSize
	}
	return s.paymentsCfg.JobBatchSize
}
