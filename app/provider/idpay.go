package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	IDPayCode = "idpay_edd_gateway"

	idpayCreatePath  = "/v1/payment"
	idpayInquiryPath = "/v1/payment/inquiry"

	// Used when a failure response carries no readable error_message.
	fallbackErrorMessage = "unexpected response from IDPay"
	unreachableMessage   = "IDPay is unreachable"
)

type IDPayConfig struct {
	BaseURL     string
	HTTPTimeout time.Duration
}

type IDPayProvider struct {
	baseURL string
	client  *http.Client
}

func NewIDPayProvider(cfg IDPayConfig) *IDPayProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.idpay.ir"
	}

	return &IDPayProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *IDPayProvider) Code() string {
	return IDPayCode
}

func (p *IDPayProvider) CreatePayment(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	payload := map[string]interface{}{
		"order_id": input.OrderID,
		"amount":   input.Amount,
		"phone":    input.Phone,
		"desc":     input.Description,
		"callback": input.CallbackURL,
	}

	status, body, err := p.postJSON(ctx, idpayCreatePath, input.Credentials, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, &APIError{StatusCode: status, Message: parseErrorMessage(body)}
	}

	var result struct {
		ID   flexString `json:"id"`
		Link string     `json:"link"`
	}
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &result) != nil {
		return nil, &APIError{StatusCode: status, Message: parseErrorMessage(body)}
	}
	link := strings.TrimSpace(result.Link)
	if link == "" {
		return nil, &APIError{StatusCode: status, Message: parseErrorMessage(body)}
	}

	return &CreateOutput{
		PaymentID: strings.TrimSpace(string(result.ID)),
		Link:      link,
	}, nil
}

func (p *IDPayProvider) Inquire(ctx context.Context, input *InquiryInput) (*InquiryOutput, error) {
	payload := map[string]interface{}{
		"id":       input.PaymentID,
		"order_id": input.OrderID,
	}

	status, body, err := p.postJSON(ctx, idpayInquiryPath, input.Credentials, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Message: parseErrorMessage(body)}
	}

	var result struct {
		ID      flexString `json:"id"`
		OrderID flexString `json:"order_id"`
		TrackID flexString `json:"track_id"`
		CardNo  flexString `json:"card_no"`
		Status  flexInt    `json:"status"`
		Amount  flexInt    `json:"amount"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &APIError{StatusCode: status, Message: fallbackErrorMessage, Err: err}
	}

	return &InquiryOutput{
		PaymentID: string(result.ID),
		OrderID:   string(result.OrderID),
		TrackID:   string(result.TrackID),
		CardNo:    string(result.CardNo),
		Status:    int(result.Status),
		Amount:    int64(result.Amount),
	}, nil
}

func (p *IDPayProvider) postJSON(ctx context.Context, path string, creds Credentials, payload interface{}) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", creds.APIKey)
	req.Header.Set("X-SANDBOX", strconv.FormatBool(creds.Sandbox))

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, &APIError{Message: unreachableMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &APIError{StatusCode: resp.StatusCode, Message: fallbackErrorMessage, Err: err}
	}

	return resp.StatusCode, body, nil
}

func parseErrorMessage(body []byte) string {
	var payload struct {
		ErrorCode    flexString `json:"error_code"`
		ErrorMessage string     `json:"error_message"`
	}
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &payload) != nil {
		return fallbackErrorMessage
	}
	if msg := strings.TrimSpace(payload.ErrorMessage); msg != "" {
		return msg
	}
	return fallbackErrorMessage
}

// StatusAndMessage extracts what the order note records for a failed exchange.
func StatusAndMessage(err error) (int, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.Message
	}
	if err == nil {
		return 0, ""
	}
	return 0, fallbackErrorMessage
}

// flexString accepts both JSON strings and numbers; IDPay is not consistent about track_id and card_no.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*s = ""
		return nil
	}
	if raw[0] == '"' {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(raw)
	return nil
}

// flexInt accepts numbers and numeric strings ("100" and 100 are both status 100).
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}
