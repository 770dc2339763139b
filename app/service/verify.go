package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-idpay/app/entity"
	"github.com/vibast-solutions/ms-go-idpay/app/provider"
	"github.com/vibast-solutions/ms-go-idpay/app/repository"
)

type verifyPaymentRequest interface {
	GetId() string
	GetOrderId() string
	GetToken() string
}

// VerifyPayment settles the order behind an IDPay callback. Only a pending order
// is ever inquired, and each pending reference can be consumed once.
func (s *PaymentService) VerifyPayment(ctx context.Context, req verifyPaymentRequest, cfg Configuration) (*VerificationOutcome, error) {
	paymentID := strings.TrimSpace(req.GetId())
	postedOrderID := strings.TrimSpace(req.GetOrderId())
	if paymentID == "" || postedOrderID == "" {
		return nil, ErrMalformedCallback
	}

	unresolved := &VerificationOutcome{ErrorMessage: UnresolvedOrderMessage}

	orderID, ok, err := s.pendingRepo.Take(ctx, strings.TrimSpace(req.GetToken()))
	if err != nil {
		s.logger.WithError(err).Error("pending payment reference lookup failed")
		return unresolved, fmt.Errorf("%w: %v", ErrUnresolvedOrder, err)
	}
	if !ok {
		return unresolved, ErrUnresolvedOrder
	}

	logger := s.logger.WithFields(logrus.Fields{"order_id": orderID, "payment_id": paymentID})
	if postedOrderID != strconv.FormatUint(orderID, 10) {
		logger.WithField("posted_order_id", postedOrderID).Warn("callback order_id does not match pending reference")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		logger.WithError(err).Error("order lookup failed")
		return unresolved, fmt.Errorf("%w: %v", ErrUnresolvedOrder, err)
	}
	if order == nil {
		return unresolved, ErrUnresolvedOrder
	}
	if !order.IsPending() {
		return nil, ErrAlreadyFinalized
	}

	out, err := s.gateway.Inquire(ctx, &provider.InquiryInput{
		Credentials: cfg.credentials(),
		PaymentID:   paymentID,
		OrderID:     order.ID,
	})
	if err != nil {
		status, message := provider.StatusAndMessage(err)
		logger.WithError(err).WithField("status", status).Warn("idpay inquiry failed")
		s.failOrder(ctx, order, fmt.Sprintf("%d - %s", status, message))
		return &VerificationOutcome{
			Order:        order,
			RedirectURL:  cfg.CheckoutPageURL,
			ErrorMessage: message,
		}, fmt.Errorf("%w: %v", ErrInquiry, err)
	}

	s.addNote(ctx, order, "IDPay tracking id: "+out.TrackID)
	s.addNote(ctx, order, fmt.Sprintf("%d - %s", out.Status, InquiryStatusMessage(out.Status)))
	s.addNote(ctx, order, "Payer card number: "+out.CardNo)
	s.setMetadata(ctx, order, entity.MetaTrackID, out.TrackID)
	s.setMetadata(ctx, order, entity.MetaStatus, strconv.Itoa(out.Status))
	s.setMetadata(ctx, order, entity.MetaPaymentCardNo, out.CardNo)

	if out.Status != InquiryStatusConfirmed {
		if err := s.transition(ctx, order, entity.OrderStatusFailed); err != nil {
			return nil, s.finalizeErr(err)
		}
		return &VerificationOutcome{Order: order, RedirectURL: cfg.FailurePageURL}, nil
	}

	if err := s.cartRepo.Empty(ctx, order.CartKey); err != nil {
		logger.WithError(err).Warn("cart not emptied")
	}
	if err := s.transition(ctx, order, entity.OrderStatusPublish); err != nil {
		return nil, s.finalizeErr(err)
	}

	logger.WithField("track_id", out.TrackID).Info("payment confirmed")
	return &VerificationOutcome{Order: order, RedirectURL: cfg.SuccessPageURL}, nil
}

// A concurrent verification may finalize the order between lookup and update.
func (s *PaymentService) finalizeErr(err error) error {
	if errors.Is(err, repository.ErrOrderNotPending) {
		return ErrAlreadyFinalized
	}
	return err
}
