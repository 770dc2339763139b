package repository

import (
	"context"
	"strings"
)

type CartRepository struct {
	db DBTX
}

func NewCartRepository(db DBTX) *CartRepository {
	return &CartRepository{db: db}
}

// Empty removes every item from the buyer cart identified by cartKey.
func (r *CartRepository) Empty(ctx context.Context, cartKey string) error {
	cartKey = strings.TrimSpace(cartKey)
	if cartKey == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_key = ?`, cartKey)
	return err
}
