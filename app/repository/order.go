package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-idpay/app/entity"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
	ErrOrderNotPending    = errors.New("order is not pending")
)

const orderColumns = `
	id, purchase_key, email, price, currency, status,
	cart_key, cart_details, purchase_date, created_at, updated_at
`

// OrderRepository is the MySQL-backed order ledger.
type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (
			purchase_key, email, price, currency, status,
			cart_key, cart_details, purchase_date, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		order.PurchaseKey,
		order.Email,
		order.Price,
		order.Currency,
		order.Status,
		order.CartKey,
		nullableStringValue(order.CartDetails),
		order.PurchaseDate,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrOrderAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = uint64(id)
	return nil
}

// FindByID returns nil, nil when the order does not exist.
func (r *OrderRepository) FindByID(ctx context.Context, id uint64) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	order := &entity.Order{}
	if err := scanOrder(r.db.QueryRowContext(ctx, query, id), order); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	notes, err := r.listNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Notes = notes

	metadata, err := r.listMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Metadata = metadata

	return order, nil
}

// TransitionStatus moves a pending order to status. Orders that already left
// pending are never touched and yield ErrOrderNotPending.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id uint64, status string) error {
	query := `
		UPDATE orders SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id, entity.OrderStatusPending)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotPending
	}
	return nil
}

func (r *OrderRepository) AddNote(ctx context.Context, id uint64, content string) error {
	query := `INSERT INTO order_notes (order_id, content, created_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, id, content, time.Now().UTC())
	return err
}

func (r *OrderRepository) SetMetadata(ctx context.Context, id uint64, key, value string) error {
	query := `
		INSERT INTO order_meta (order_id, meta_key, meta_value)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE meta_value = VALUES(meta_value)
	`
	_, err := r.db.ExecContext(ctx, query, id, key, value)
	return err
}

func (r *OrderRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status = ?
		  AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.OrderStatusPending, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*entity.Order, 0)
	for rows.Next() {
		item := &entity.Order{}
		if err := scanOrder(rows, item); err != nil {
			return nil, err
		}
		orders = append(orders, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) listNotes(ctx context.Context, orderID uint64) ([]entity.OrderNote, error) {
	query := `
		SELECT id, order_id, content, created_at
		FROM order_notes
		WHERE order_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]entity.OrderNote, 0)
	for rows.Next() {
		var note entity.OrderNote
		if err := rows.Scan(&note.ID, &note.OrderID, &note.Content, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *OrderRepository) listMetadata(ctx context.Context, orderID uint64) (map[string]string, error) {
	query := `SELECT meta_key, meta_value FROM order_meta WHERE order_id = ?`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(scan rowScanner, order *entity.Order) error {
	var cartDetails sql.NullString

	err := scan.Scan(
		&order.ID,
		&order.PurchaseKey,
		&order.Email,
		&order.Price,
		&order.Currency,
		&order.Status,
		&order.CartKey,
		&cartDetails,
		&order.PurchaseDate,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return err
	}

	order.CartDetails = stringFromNull(cartDetails)
	return nil
}
