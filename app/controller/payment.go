package controller

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-idpay/app/factory"
	"github.com/vibast-solutions/ms-go-idpay/app/mapper"
	"github.com/vibast-solutions/ms-go-idpay/app/service"
	"github.com/vibast-solutions/ms-go-idpay/app/types"
)

// PaymentErrorParam carries the buyer-facing error back to the checkout page.
const PaymentErrorParam = "payment-error"

type PaymentController struct {
	paymentService *service.PaymentService
	gatewayCfg     service.Configuration
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService, gatewayCfg service.Configuration) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		gatewayCfg:     gatewayCfg,
		logger:         factory.NewModuleLogger("idpay-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// Checkout starts a payment from the store's checkout form and redirects the buyer.
func (c *PaymentController) Checkout(ctx echo.Context) error {
	req, err := types.NewCreatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.redirectToCheckout(ctx, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.redirectToCheckout(ctx, err.Error())
	}

	outcome, err := c.paymentService.CreatePayment(ctx.Request().Context(), req, c.gatewayCfg)
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Warn("Checkout payment failed")
		message := "The payment could not be started."
		if outcome != nil && outcome.ErrorMessage != "" {
			message = outcome.ErrorMessage
		}
		return c.redirectToCheckout(ctx, message)
	}

	return ctx.Redirect(http.StatusFound, outcome.RedirectURL)
}

// VerifyPayment handles the buyer's return from IDPay. Requests without the
// gateway flag are not ours and get a 404.
func (c *PaymentController) VerifyPayment(ctx echo.Context) error {
	if !types.IsGatewayCallback(ctx, service.CallbackFlag) {
		return c.writeError(ctx, http.StatusNotFound, "not found")
	}

	req := types.NewVerifyPaymentRequestFromContext(ctx)
	logger := factory.LoggerWithContext(c.logger, ctx).WithField("payment_id", req.GetId())

	outcome, err := c.paymentService.VerifyPayment(ctx.Request().Context(), req, c.gatewayCfg)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedCallback):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUnresolvedOrder):
			logger.WithError(err).Warn("Unresolved payment callback")
			return c.writeError(ctx, http.StatusBadRequest, service.UnresolvedOrderMessage)
		case errors.Is(err, service.ErrAlreadyFinalized):
			return ctx.NoContent(http.StatusNoContent)
		case errors.Is(err, service.ErrInquiry):
			logger.WithError(err).Warn("Payment inquiry failed")
			return c.redirectToCheckout(ctx, outcome.ErrorMessage)
		default:
			logger.WithError(err).Error("Verify payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.Redirect(http.StatusFound, outcome.RedirectURL)
}

func (c *PaymentController) CreatePayment(ctx echo.Context) error {
	req, err := types.NewCreatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	outcome, err := c.paymentService.CreatePayment(ctx.Request().Context(), req, c.gatewayCfg)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedCurrency),
			errors.Is(err, service.ErrCurrencyMismatch),
			errors.Is(err, service.ErrAmountOutOfRange):
			return c.writeError(ctx, http.StatusUnprocessableEntity, outcome.ErrorMessage)
		case errors.Is(err, service.ErrRemoteGateway):
			return c.writeError(ctx, http.StatusBadGateway, outcome.ErrorMessage)
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.CreatePaymentResponse{
		Order:       mapper.OrderToResponse(outcome.Order),
		RedirectUrl: outcome.RedirectURL,
	})
}

func (c *PaymentController) GetOrder(ctx echo.Context) error {
	req, err := types.NewGetOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.GetOrder(ctx.Request().Context(), req.GetId())
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get order failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.OrderResponse{Order: mapper.OrderToResponse(item)})
}

func (c *PaymentController) redirectToCheckout(ctx echo.Context, message string) error {
	target := c.gatewayCfg.CheckoutPageURL
	if target == "" {
		return c.writeError(ctx, http.StatusBadRequest, message)
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return ctx.Redirect(http.StatusFound, target)
	}
	if message != "" {
		query := parsed.Query()
		query.Set(PaymentErrorParam, message)
		parsed.RawQuery = query.Encode()
	}
	return ctx.Redirect(http.StatusFound, parsed.String())
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
