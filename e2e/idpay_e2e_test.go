//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	idpaygrpc "github.com/vibast-solutions/ms-go-idpay/app/grpc"
	"github.com/vibast-solutions/ms-go-idpay/app/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	defaultIDPayHTTPBase = "http://localhost:48086"
	defaultIDPayGRPCAddr = "localhost:49096"
)

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string) *httpClient {
	return &httpClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *httpClient) doJSON(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	return c.doJSONWithAPIKey(t, method, path, body, idpayCallerAPIKey())
}

func (c *httpClient) doJSONWithAPIKey(t *testing.T, method, path string, body any, apiKey string) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader = bytes.NewReader(nil)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", fmt.Sprintf("e2e-http-%d", time.Now().UnixNano()))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	return c.do(t, req)
}

func (c *httpClient) postForm(t *testing.T, path string, form url.Values) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(t, req)
}

func (c *httpClient) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}
	return resp, bodyBytes
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		req, _ := http.NewRequest(http.MethodGet, baseURL+"/health", nil)
		req.Header.Set("X-Request-ID", fmt.Sprintf("wait-http-%d", time.Now().UnixNano()))
		req.Header.Set("X-API-Key", idpayCallerAPIKey())
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func waitForGRPC(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("grpc service not ready at %s", addr)
}

func dialIDPayGRPC(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc dial failed: %v", err)
	}
	return conn
}

func grpcContextWithHeaders(apiKey, requestID string) context.Context {
	ctx := context.Background()
	if requestID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", requestID)
	}
	if apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-api-key", apiKey)
	}
	return ctx
}

func TestIDPayE2E(t *testing.T) {
	httpBase := os.Getenv("IDPAY_HTTP_URL")
	if httpBase == "" {
		httpBase = defaultIDPayHTTPBase
	}
	grpcAddr := os.Getenv("IDPAY_GRPC_ADDR")
	if grpcAddr == "" {
		grpcAddr = defaultIDPayGRPCAddr
	}

	if err := waitForHTTP(httpBase, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}
	if err := waitForGRPC(grpcAddr, 30*time.Second); err != nil {
		t.Fatalf("grpc not ready: %v", err)
	}

	client := newHTTPClient(httpBase)

	conn := dialIDPayGRPC(t, grpcAddr)
	defer conn.Close()
	grpcClient := idpaygrpc.NewIDPayServiceClient(conn)

	t.Run("HTTPMissingRequestID", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, httpBase+"/health", nil)
		if err != nil {
			t.Fatalf("new request failed: %v", err)
		}
		req.Header.Set("X-API-Key", idpayCallerAPIKey())
		resp, _ := client.do(t, req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing x-request-id, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPUnauthorizedMissingAPIKey", func(t *testing.T) {
		resp, _ := client.doJSONWithAPIKey(t, http.MethodGet, "/health", nil, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPForbiddenInsufficientAccess", func(t *testing.T) {
		resp, _ := client.doJSONWithAPIKey(t, http.MethodGet, "/health", nil, idpayNoAccessAPIKey())
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPValidationCreate", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/payments", map[string]any{"email": "buyer@example.com"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", resp.StatusCode, string(body))
		}
		var errResp types.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
			t.Fatalf("expected error body, got %s", string(body))
		}
	})

	t.Run("HTTPForeignCurrency", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/payments", map[string]any{
			"purchase_key": fmt.Sprintf("e2e-%d", time.Now().UnixNano()),
			"email":        "buyer@example.com",
			"price":        "1000",
			"currency":     "USD",
		})
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", resp.StatusCode, string(body))
		}
	})

	t.Run("HTTPGetNotFound", func(t *testing.T) {
		resp, _ := client.doJSON(t, http.MethodGet, "/payments/999999999", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("VerifyWithoutFlagIsNotFound", func(t *testing.T) {
		resp, _ := client.postForm(t, "/payments/verify", url.Values{"id": {"pay-1"}, "order_id": {"1"}})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("VerifyUnknownToken", func(t *testing.T) {
		resp, body := client.postForm(t, "/payments/verify?verify_idpay_edd_gateway=1&token=unknown", url.Values{"id": {"pay-1"}, "order_id": {"1"}})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		if !strings.Contains(string(body), "The information sent is not correct.") {
			t.Fatalf("unexpected body: %s", string(body))
		}
	})

	t.Run("GRPCMissingRequestID", func(t *testing.T) {
		_, err := grpcClient.Health(grpcContextWithHeaders(idpayCallerAPIKey(), ""), &emptypb.Empty{})
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("expected InvalidArgument, got %v", err)
		}
	})

	t.Run("GRPCUnauthorizedMissingAPIKey", func(t *testing.T) {
		_, err := grpcClient.Health(grpcContextWithHeaders("", "e2e-grpc-noauth"), &emptypb.Empty{})
		if status.Code(err) != codes.Unauthenticated {
			t.Fatalf("expected Unauthenticated, got %v", err)
		}
	})

	t.Run("GRPCForbiddenInsufficientAccess", func(t *testing.T) {
		_, err := grpcClient.Health(grpcContextWithHeaders(idpayNoAccessAPIKey(), "e2e-grpc-forbidden"), &emptypb.Empty{})
		if status.Code(err) != codes.PermissionDenied {
			t.Fatalf("expected PermissionDenied, got %v", err)
		}
	})

	t.Run("GRPCHealth", func(t *testing.T) {
		resp, err := grpcClient.Health(grpcContextWithHeaders(idpayCallerAPIKey(), "e2e-grpc-health"), &emptypb.Empty{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.GetFields()["status"].GetStringValue() != "ok" {
			t.Fatalf("unexpected health: %v", resp)
		}
	})

	t.Run("GRPCValidationCreate", func(t *testing.T) {
		in, _ := structpb.NewStruct(map[string]any{"email": "buyer@example.com"})
		_, err := grpcClient.CreatePayment(grpcContextWithHeaders(idpayCallerAPIKey(), "e2e-grpc-create"), in)
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("expected InvalidArgument, got %v", err)
		}
	})

	t.Run("GRPCGetNotFound", func(t *testing.T) {
		_, err := grpcClient.GetOrder(grpcContextWithHeaders(idpayCallerAPIKey(), "e2e-grpc-get"), wrapperspb.UInt64(999999999))
		if status.Code(err) != codes.NotFound {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})
}
