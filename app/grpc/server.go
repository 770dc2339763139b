package grpc

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/vibast-solutions/ms-go-idpay/app/mapper"
	"github.com/vibast-solutions/ms-go-idpay/app/service"
	"github.com/vibast-solutions/ms-go-idpay/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Server struct {
	paymentService *service.PaymentService
	gatewayCfg     service.Configuration
}

func NewServer(paymentService *service.PaymentService, gatewayCfg service.Configuration) *Server {
	return &Server{paymentService: paymentService, gatewayCfg: gatewayCfg}
}

func (s *Server) Health(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"status": "ok"})
}

func (s *Server) CreatePayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	l := loggerWithContext(ctx)
	req := createPaymentRequestFromStruct(in)
	if err := req.Validate(); err != nil {
		l.WithError(err).Debug("Create payment validation failed")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	outcome, err := s.paymentService.CreatePayment(ctx, req, s.gatewayCfg)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedCurrency),
			errors.Is(err, service.ErrCurrencyMismatch),
			errors.Is(err, service.ErrAmountOutOfRange):
			return nil, status.Error(codes.InvalidArgument, outcome.ErrorMessage)
		case errors.Is(err, service.ErrRemoteGateway):
			return nil, status.Error(codes.Unavailable, outcome.ErrorMessage)
		default:
			l.WithError(err).Error("Create payment failed")
			return nil, status.Error(codes.Internal, "internal server error")
		}
	}

	order, err := mapper.OrderToStruct(outcome.Order)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"order":        structpb.NewStructValue(order),
		"redirect_url": structpb.NewStringValue(outcome.RedirectURL),
	}}, nil
}

func (s *Server) GetOrder(ctx context.Context, in *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	req := &types.GetOrderRequest{Id: in.GetValue()}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.paymentService.GetOrder(ctx, req.GetId())
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return nil, status.Error(codes.NotFound, "order not found")
		}
		loggerWithContext(ctx).WithError(err).Error("Get order failed")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	order, err := mapper.OrderToStruct(item)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return order, nil
}

func createPaymentRequestFromStruct(in *structpb.Struct) *types.CreatePaymentRequest {
	fields := in.GetFields()
	return &types.CreatePaymentRequest{
		PurchaseKey:  stringField(fields, "purchase_key"),
		Email:        stringField(fields, "email"),
		Price:        stringField(fields, "price"),
		Currency:     stringField(fields, "currency"),
		CartKey:      stringField(fields, "cart_key"),
		CartDetails:  stringField(fields, "cart_details"),
		PurchaseDate: stringField(fields, "purchase_date"),
	}
}

// stringField accepts numbers too, so a caller may send price as 1500 or "1500".
func stringField(fields map[string]*structpb.Value, name string) string {
	v, ok := fields[name]
	if !ok {
		return ""
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return strings.TrimSpace(kind.StringValue)
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
	default:
		return ""
	}
}
