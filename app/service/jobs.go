package service

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-idpay/app/entity"
	"github.com/vibast-solutions/ms-go-idpay/app/repository"
)

const expiredMessage = "Payment session expired before verification."

// RunExpirePendingBatch fails pending orders whose buyer never came back from the gateway.
func (s *PaymentService) RunExpirePendingBatch(ctx context.Context) error {
	now := s.now().UTC()
	cutoff := now.Add(-s.pendingTimeout())
	items, err := s.orderRepo.ListExpiredPending(ctx, cutoff, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, order := range items {
		if order == nil || !order.IsPending() {
			continue
		}

		if err := s.transition(ctx, order, entity.OrderStatusFailed); err != nil {
			if errors.Is(err, repository.ErrOrderNotPending) {
				continue
			}
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		s.addNote(ctx, order, expiredMessage)
	}

	return firstErr
}

// pendingTimeout never undercuts the pending reference TTL, so an order cannot
// expire while its buyer can still return from IDPay.
func (s *PaymentService) pendingTimeout() time.Duration {
	timeout := s.paymentsCfg.PendingTimeout
	if timeout <= 0 {
		timeout = defaultPendingTimeout
	}
	if ttl := s.pendingRefTTL(); timeout < ttl {
		return ttl
	}
	return timeout
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
