//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"

	authpb "github.com/vibast-solutions/ms-go-auth/app/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	defaultIDPayCallerAPIKey   = "idpay-caller-key"
	defaultIDPayNoAccessAPIKey = "idpay-no-access-key"
	defaultIDPayAppAPIKey      = "idpay-app-api-key"
	idpayAuthMockAddr          = "0.0.0.0:38086"
)

func idpayCallerAPIKey() string {
	if value := strings.TrimSpace(os.Getenv("IDPAY_CALLER_API_KEY")); value != "" {
		return value
	}
	return defaultIDPayCallerAPIKey
}

func idpayNoAccessAPIKey() string {
	if value := strings.TrimSpace(os.Getenv("IDPAY_NO_ACCESS_API_KEY")); value != "" {
		return value
	}
	return defaultIDPayNoAccessAPIKey
}

func idpayAppAPIKey() string {
	if value := strings.TrimSpace(os.Getenv("IDPAY_APP_API_KEY")); value != "" {
		return value
	}
	return defaultIDPayAppAPIKey
}

type idpayAuthGRPCServer struct {
	authpb.UnimplementedAuthServiceServer
}

func (s *idpayAuthGRPCServer) ValidateInternalAccess(ctx context.Context, req *authpb.ValidateInternalAccessRequest) (*authpb.ValidateInternalAccessResponse, error) {
	if incomingIDPayAPIKey(ctx) != idpayAppAPIKey() {
		return nil, status.Error(codes.Unauthenticated, "unauthorized caller")
	}

	apiKey := strings.TrimSpace(req.GetApiKey())
	switch apiKey {
	case idpayCallerAPIKey():
		return &authpb.ValidateInternalAccessResponse{
			ServiceName:   "shop-backend",
			AllowedAccess: []string{"idpay-gateway", "orders-service"},
		}, nil
	case idpayNoAccessAPIKey():
		return &authpb.ValidateInternalAccessResponse{
			ServiceName:   "reporting-service",
			AllowedAccess: []string{"orders-service"},
		}, nil
	default:
		return nil, status.Error(codes.Unauthenticated, "invalid api key")
	}
}

func incomingIDPayAPIKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-api-key")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func TestMain(m *testing.M) {
	if os.Getenv("IDPAY_CALLER_API_KEY") == "" {
		_ = os.Setenv("IDPAY_CALLER_API_KEY", defaultIDPayCallerAPIKey)
	}
	if os.Getenv("IDPAY_NO_ACCESS_API_KEY") == "" {
		_ = os.Setenv("IDPAY_NO_ACCESS_API_KEY", defaultIDPayNoAccessAPIKey)
	}
	if os.Getenv("IDPAY_APP_API_KEY") == "" {
		_ = os.Setenv("IDPAY_APP_API_KEY", defaultIDPayAppAPIKey)
	}

	listener, err := net.Listen("tcp", idpayAuthMockAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start idpay auth grpc mock: %v\n", err)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	authpb.RegisterAuthServiceServer(grpcServer, &idpayAuthGRPCServer{})

	go func() {
		_ = grpcServer.Serve(listener)
	}()

	exitCode := m.Run()

	grpcServer.GracefulStop()
	_ = listener.Close()

	os.Exit(exitCode)
}
