package service

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPendingReference = errors.New("pending payment reference could not be stored")

	ErrOrderCreation       = errors.New("order could not be created")
	ErrUnsupportedCurrency = errors.New("currency is not supported")
	ErrCurrencyMismatch    = errors.New("currency does not match the store currency")
	ErrAmountOutOfRange    = errors.New("amount is out of range")
	ErrRemoteGateway       = errors.New("payment could not be created on the gateway")
	ErrMalformedCallback   = errors.New("callback is missing id or order_id")
	ErrUnresolvedOrder     = errors.New("callback does not resolve to an order")
	ErrAlreadyFinalized    = errors.New("order is already finalized")
	ErrInquiry             = errors.New("payment inquiry failed")
)
