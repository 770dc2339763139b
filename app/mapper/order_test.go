package mapper

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-idpay/app/entity"
)

func testOrder() *entity.Order {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return &entity.Order{
		ID:           12,
		PurchaseKey:  "pk-12",
		Email:        "buyer@example.com",
		Price:        decimal.RequireFromString("1500.50"),
		Currency:     "IRT",
		Status:       entity.OrderStatusPublish,
		PurchaseDate: now,
		Notes:        []entity.OrderNote{{Content: "Transaction ID: pay-1", CreatedAt: now}},
		Metadata:     map[string]string{entity.MetaTrackID: "10012"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestOrderToResponse(t *testing.T) {
	resp := OrderToResponse(testOrder())
	if resp.Id != 12 || resp.Price != "1500.5" || resp.Status != "publish" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.CreatedAt != "2026-03-04T05:06:07Z" {
		t.Fatalf("unexpected created_at: %s", resp.CreatedAt)
	}
	if len(resp.Notes) != 1 || resp.Metadata[entity.MetaTrackID] != "10012" {
		t.Fatalf("unexpected notes/metadata: %+v", resp)
	}
	if OrderToResponse(nil) != nil {
		t.Fatal("expected nil for nil order")
	}
}

func TestOrderToStruct(t *testing.T) {
	st, err := OrderToStruct(testOrder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := st.GetFields()
	if fields["id"].GetNumberValue() != 12 || fields["status"].GetStringValue() != "publish" {
		t.Fatalf("unexpected struct: %v", st)
	}
	if fields["metadata"].GetStructValue().GetFields()[entity.MetaTrackID].GetStringValue() != "10012" {
		t.Fatalf("unexpected metadata: %v", fields["metadata"])
	}
	if len(fields["notes"].GetListValue().GetValues()) != 1 {
		t.Fatalf("unexpected notes: %v", fields["notes"])
	}
}
