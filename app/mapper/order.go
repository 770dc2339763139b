package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-idpay/app/entity"
	"github.com/vibast-solutions/ms-go-idpay/app/types"
	"google.golang.org/protobuf/types/known/structpb"
)

func OrderToResponse(item *entity.Order) *types.Order {
	if item == nil {
		return nil
	}

	notes := make([]*types.OrderNote, 0, len(item.Notes))
	for _, note := range item.Notes {
		notes = append(notes, &types.OrderNote{
			Content:   note.Content,
			CreatedAt: formatTime(note.CreatedAt),
		})
	}

	return &types.Order{
		Id:           item.ID,
		PurchaseKey:  item.PurchaseKey,
		Email:        item.Email,
		Price:        item.Price.String(),
		Currency:     item.Currency,
		Status:       item.Status,
		CartKey:      item.CartKey,
		PurchaseDate: formatTime(item.PurchaseDate),
		Notes:        notes,
		Metadata:     cloneMetadata(item.Metadata),
		CreatedAt:    formatTime(item.CreatedAt),
		UpdatedAt:    formatTime(item.UpdatedAt),
	}
}

// OrderToStruct renders an order as a protobuf Struct for the gRPC API.
func OrderToStruct(item *entity.Order) (*structpb.Struct, error) {
	if item == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
	}

	resp := OrderToResponse(item)

	notes := make([]interface{}, 0, len(resp.Notes))
	for _, note := range resp.Notes {
		notes = append(notes, map[string]interface{}{
			"content":    note.Content,
			"created_at": note.CreatedAt,
		})
	}
	metadata := make(map[string]interface{}, len(resp.Metadata))
	for k, v := range resp.Metadata {
		metadata[k] = v
	}

	return structpb.NewStruct(map[string]interface{}{
		// float64 in Struct; order ids stay well below 2^53.
		"id":            float64(resp.Id),
		"purchase_key":  resp.PurchaseKey,
		"email":         resp.Email,
		"price":         resp.Price,
		"currency":      resp.Currency,
		"status":        resp.Status,
		"cart_key":      resp.CartKey,
		"purchase_date": resp.PurchaseDate,
		"notes":         notes,
		"metadata":      metadata,
		"created_at":    resp.CreatedAt,
		"updated_at":    resp.UpdatedAt,
	})
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func cloneMetadata(src map[string]string) map[string]string {
	if len(src) == 0 {
		return map[string]string{}
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
